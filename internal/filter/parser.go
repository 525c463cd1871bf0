package filter

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// ParseKey splits a query key of the form "field[operator]" into the
// field path and the operator token. A key without brackets means
// equality. Malformed brackets or an unrecognized operator token fall
// back to equality with the key kept as given, bracket text included;
// such a key then fails field resolution and the filter is dropped,
// which keeps a mistyped operator from silently turning into an
// equality match. ParseKey never fails.
func ParseKey(raw string) (string, Operator) {
	if !strings.Contains(raw, "[") {
		return raw, OpEqual
	}

	start := strings.Index(raw, "[")
	end := strings.Index(raw, "]")
	if end == -1 || end <= start {
		log.Warn().Str("key", raw).Msg("Malformed filter key brackets")
		return raw, OpEqual
	}

	op := Operator(raw[start+1 : end])
	if !op.Valid() {
		log.Warn().Str("key", raw).Str("operator", string(op)).Msg("Unsupported filter operator")
		return raw, OpEqual
	}

	return raw[:start], op
}

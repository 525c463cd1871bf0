package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNumberFormat     = errors.New("invalid number format")
	ErrInvalidEnumValue = errors.New("invalid enum value")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// timestampLayouts are the accepted ISO-8601 local date-time forms,
// tried in order. No zone offset: creation dates are stored as local
// date-times.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Coerce converts a raw query value into f's value domain: string
// identity, int64/float64 for the numeric families, permissive bool
// ("true" case-insensitively, everything else false), canonical variant
// name for enums, time.Time for timestamps. Fields of an unsupported
// type pass the raw string through unchanged. A coercion error means
// the caller drops the filter; it is never a request failure.
func Coerce(raw string, f Field) (any, error) {
	switch f.Type {
	case TypeString:
		return raw, nil
	case TypeInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrNumberFormat, raw)
		}
		return n, nil
	case TypeFloat:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrNumberFormat, raw)
		}
		return n, nil
	case TypeBool:
		return strings.EqualFold(raw, "true"), nil
	case TypeEnum:
		v, ok := f.Enum.Parse(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a %s", ErrInvalidEnumValue, raw, f.Enum.Name)
		}
		return v, nil
	case TypeTimestamp:
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
	default:
		return raw, nil
	}
}

package filter

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// systemParams are reserved for pagination and sorting; they are
// stripped before filter processing.
var systemParams = map[string]struct{}{
	"page":          {},
	"size":          {},
	"sortBy":        {},
	"sortDirection": {},
}

// Builder translates raw query parameters into predicates over one
// entity schema. It holds no per-request state and is safe for
// concurrent use.
type Builder struct {
	schema *Schema
}

// NewBuilder returns a builder over the given schema.
func NewBuilder(schema *Schema) *Builder {
	return &Builder{schema: schema}
}

// Build turns the remaining (key, value) pairs into a conjunction of
// conditions. Filters that cannot be applied (unknown field, failed
// coercion, ordering on an unordered type) are logged and dropped;
// the result set then behaves as if that filter were absent. Build
// never fails: zero surviving filters yield the match-all predicate.
// Callers wanting strict rejection of bad filters must validate above
// this layer.
func (b *Builder) Build(params map[string]string) *Predicate {
	keys := make([]string, 0, len(params))
	for key := range params {
		if _, reserved := systemParams[key]; reserved {
			continue
		}
		keys = append(keys, key)
	}
	// conjunction, so order does not change the result; sorting keeps
	// the rendered SQL deterministic
	sort.Strings(keys)

	pred := &Predicate{}
	for _, key := range keys {
		value := params[key]
		if strings.TrimSpace(value) == "" {
			continue
		}

		fieldPath, op := ParseKey(key)
		field, ok := b.schema.Resolve(fieldPath)
		if !ok {
			log.Warn().Str("field", fieldPath).Msg("Filter field not found in schema")
			continue
		}

		if cond := buildCondition(field, op, value); cond != nil {
			pred.conds = append(pred.conds, cond)
		}
	}
	return pred
}

func buildCondition(f Field, op Operator, value string) Condition {
	if f.Type == TypeEnum && op.Ordering() {
		return buildEnumRank(f, op, value)
	}

	switch op {
	case OpLike:
		return buildLike(f, value)
	case OpEqual, OpNotEqual:
		v, err := Coerce(value, f)
		if err != nil {
			log.Warn().Err(err).Str("column", f.Column).Str("value", value).Msg("Dropping filter: value coercion failed")
			return nil
		}
		return compareCondition{column: f.Column, op: op, value: v}
	default:
		if !orderable(f.Type) {
			log.Warn().Str("column", f.Column).Str("operator", string(op)).Msg("Dropping filter: type does not support ordering")
			return nil
		}
		v, err := Coerce(value, f)
		if err != nil {
			log.Warn().Err(err).Str("column", f.Column).Str("value", value).Msg("Dropping filter: value coercion failed")
			return nil
		}
		return compareCondition{column: f.Column, op: op, value: v}
	}
}

// buildEnumRank resolves the target ordinal either from an integer
// literal or from a variant name, then compares stored ordinals.
func buildEnumRank(f Field, op Operator, raw string) Condition {
	ordinal, err := strconv.Atoi(raw)
	if err != nil {
		variant, ok := f.Enum.Parse(raw)
		if !ok {
			log.Warn().Str("column", f.Column).Str("value", raw).Msg("Dropping filter: invalid enum value for ordinal comparison")
			return nil
		}
		ordinal, _ = f.Enum.Ordinal(variant)
	}
	return enumRankCondition{column: f.Column, enum: f.Enum, op: op, ordinal: ordinal}
}

// buildLike builds the case-insensitive substring match. String columns
// compare directly, other columns are cast to text. Enum columns keep
// the uppercased pattern of the stored variant names.
func buildLike(f Field, raw string) Condition {
	switch f.Type {
	case TypeString:
		return likeCondition{column: f.Column, pattern: "%" + strings.ToLower(raw) + "%"}
	case TypeEnum:
		return likeCondition{column: f.Column, pattern: "%" + strings.ToUpper(raw) + "%"}
	default:
		return likeCondition{column: f.Column, pattern: "%" + strings.ToLower(raw) + "%", cast: true}
	}
}

func orderable(t Type) bool {
	switch t {
	case TypeInteger, TypeFloat, TypeString, TypeTimestamp:
		return true
	}
	return false
}

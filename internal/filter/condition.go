package filter

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Condition is one boolean restriction over a single column. Conditions
// render to a SQL fragment with positional placeholders and can also be
// evaluated directly against an in-memory row keyed by column name, so
// the same predicate works as a WHERE clause or as a pre-filter.
type Condition interface {
	// AppendSQL writes the condition to sb, appending bind values to
	// args. Placeholder numbering continues from len(*args).
	AppendSQL(sb *strings.Builder, args *[]any)
	// Match evaluates the condition against a row keyed by column name.
	Match(row map[string]any) bool
}

// Predicate is the conjunction of zero or more conditions. A predicate
// with no conditions matches every record.
type Predicate struct {
	conds []Condition
}

// Empty reports whether the predicate carries no restriction.
func (p *Predicate) Empty() bool {
	return len(p.conds) == 0
}

// SQL renders the conditions joined with AND, appending bind values to
// args. Returns "" for the unrestricted predicate; callers then omit
// the WHERE clause.
func (p *Predicate) SQL(args *[]any) string {
	if len(p.conds) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, c := range p.conds {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		c.AppendSQL(&sb, args)
	}
	return sb.String()
}

// Matches reports whether row satisfies every condition.
func (p *Predicate) Matches(row map[string]any) bool {
	for _, c := range p.conds {
		if !c.Match(row) {
			return false
		}
	}
	return true
}

// quoteIdentifier quotes a SQL identifier, doubling embedded quotes.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteLiteral quotes a string literal for embedding in a CASE arm.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// compareCondition is a plain "column <op> value" restriction with an
// already coerced value.
type compareCondition struct {
	column string
	op     Operator
	value  any
}

func (c compareCondition) AppendSQL(sb *strings.Builder, args *[]any) {
	*args = append(*args, c.value)
	fmt.Fprintf(sb, "%s %s $%d", quoteIdentifier(c.column), sqlComparators[c.op], len(*args))
}

func (c compareCondition) Match(row map[string]any) bool {
	stored, ok := row[c.column]
	if !ok || stored == nil {
		return false
	}
	cmp, ok := compareValues(stored, c.value)
	if !ok {
		return false
	}
	return opHolds(c.op, cmp)
}

// likeCondition is a case-insensitive substring match against the
// column's textual form. Non-text columns are cast to text first.
type likeCondition struct {
	column  string
	pattern string
	cast    bool
}

func (c likeCondition) AppendSQL(sb *strings.Builder, args *[]any) {
	expr := quoteIdentifier(c.column)
	if c.cast {
		expr = "CAST(" + expr + " AS TEXT)"
	}
	*args = append(*args, c.pattern)
	fmt.Fprintf(sb, "LOWER(%s) LIKE $%d", expr, len(*args))
}

// Match mirrors the rendered SQL: the stored text is lowered and the
// pattern applied as-is, with % matching any run and _ any single
// character.
func (c likeCondition) Match(row map[string]any) bool {
	stored, ok := row[c.column]
	if !ok || stored == nil {
		return false
	}
	return likePattern(c.pattern).MatchString(strings.ToLower(stringify(stored)))
}

// likePattern compiles a SQL LIKE pattern into the equivalent anchored
// regular expression.
func likePattern(pattern string) *regexp.Regexp {
	expr := regexp.QuoteMeta(pattern)
	expr = strings.ReplaceAll(expr, "%", ".*")
	expr = strings.ReplaceAll(expr, "_", ".")
	return regexp.MustCompile("(?s)^" + expr + "$")
}

// enumRankCondition compares the stored enum text by declared ordinal.
// The store has no native ordinal comparison for text columns, so the
// rank is synthesized as a CASE mapping over every declared variant,
// with -1 as the sentinel for unmapped stored values.
type enumRankCondition struct {
	column  string
	enum    *Enum
	op      Operator
	ordinal int
}

// EnumRank builds an ordinal-rank condition for an enum column. Shared
// with the persistence layer for fixed ordinal-comparison queries.
func EnumRank(column string, e *Enum, op Operator, ordinal int) Condition {
	return enumRankCondition{column: column, enum: e, op: op, ordinal: ordinal}
}

func (c enumRankCondition) AppendSQL(sb *strings.Builder, args *[]any) {
	sb.WriteString("CASE ")
	sb.WriteString(quoteIdentifier(c.column))
	for i, v := range c.enum.Variants {
		fmt.Fprintf(sb, " WHEN %s THEN %d", quoteLiteral(v), i)
	}
	*args = append(*args, c.ordinal)
	fmt.Fprintf(sb, " ELSE -1 END %s $%d", sqlComparators[c.op], len(*args))
}

func (c enumRankCondition) Match(row map[string]any) bool {
	stored, ok := row[c.column]
	if !ok || stored == nil {
		return false
	}
	rank, ok := c.enum.Ordinal(stringify(stored))
	if !ok {
		rank = -1
	}
	return opHolds(c.op, rank-c.ordinal)
}

// opHolds interprets a three-way comparison result under op.
func opHolds(op Operator, cmp int) bool {
	switch op {
	case OpEqual:
		return cmp == 0
	case OpNotEqual:
		return cmp != 0
	case OpGreaterThan:
		return cmp > 0
	case OpGreaterOrEqual:
		return cmp >= 0
	case OpLessThan:
		return cmp < 0
	case OpLessOrEqual:
		return cmp <= 0
	}
	return false
}

// compareValues three-way-compares a stored value against a coerced
// filter value. Numeric kinds compare across widths, strings compare
// lexically, bools support equality only, timestamps chronologically.
func compareValues(stored, coerced any) (int, bool) {
	if a, aok := toFloat(stored); aok {
		b, bok := toFloat(coerced)
		if !bok {
			return 0, false
		}
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		default:
			return 0, true
		}
	}

	switch a := stored.(type) {
	case string:
		b, ok := coerced.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(a, b), true
	case bool:
		b, ok := coerced.(bool)
		if !ok {
			return 0, false
		}
		if a == b {
			return 0, true
		}
		return 1, true
	case time.Time:
		b, ok := coerced.(time.Time)
		if !ok {
			return 0, false
		}
		switch {
		case a.Before(b):
			return -1, true
		case a.After(b):
			return 1, true
		default:
			return 0, true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if t, ok := v.(time.Time); ok {
		return t.Format("2006-01-02T15:04:05")
	}
	return fmt.Sprint(v)
}

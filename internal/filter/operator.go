package filter

// Operator is a filter comparison operator token as it appears in a
// query key, e.g. "weight[gte]=70".
type Operator string

const (
	OpEqual          Operator = "eq"
	OpNotEqual       Operator = "ne"
	OpGreaterThan    Operator = "gt"
	OpGreaterOrEqual Operator = "gte"
	OpLessThan       Operator = "lt"
	OpLessOrEqual    Operator = "lte"
	OpLike           Operator = "like"
)

// sqlComparators maps operators to their SQL comparison form. OpLike is
// rendered separately because it wraps the column expression.
var sqlComparators = map[Operator]string{
	OpEqual:          "=",
	OpNotEqual:       "<>",
	OpGreaterThan:    ">",
	OpGreaterOrEqual: ">=",
	OpLessThan:       "<",
	OpLessOrEqual:    "<=",
}

// Valid reports whether op is one of the recognized operator tokens.
func (op Operator) Valid() bool {
	switch op {
	case OpEqual, OpNotEqual, OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual, OpLike:
		return true
	}
	return false
}

// Ordering reports whether op is one of the range operators (gt, gte,
// lt, lte). Enum fields get ordinal-rank treatment for these.
func (op Operator) Ordering() bool {
	switch op {
	case OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual:
		return true
	}
	return false
}

package ast

type Operator string

// Comparison
const (
	OpEqual              Operator = "="
	OpNotEqual           Operator = "<>"
	OpLessThan           Operator = "<"
	OpLessThanOrEqual    Operator = "<="
	OpGreaterThan        Operator = ">"
	OpGreaterThanOrEqual Operator = ">="
)

// Logical
const (
	OpAnd Operator = "AND"
	OpOr  Operator = "OR"
	OpNot Operator = "NOT"
)

// Pattern matching
const (
	OpLike    Operator = "LIKE"
	OpNotLike Operator = "NOT LIKE"
	OpILike   Operator = "ILIKE"
)

// Sets and subqueries
const (
	OpIn        Operator = "IN"
	OpNotIn     Operator = "NOT IN"
	OpExists    Operator = "EXISTS"
	OpNotExists Operator = "NOT EXISTS"
)

// Null checks
const (
	OpIsNull    Operator = "IS NULL"
	OpIsNotNull Operator = "IS NOT NULL"
)

// Ranges
const (
	OpBetween    Operator = "BETWEEN"
	OpNotBetween Operator = "NOT BETWEEN"
)

// Padded returns the operator surrounded by single spaces.
func (o Operator) Padded() string { return " " + string(o) + " " }

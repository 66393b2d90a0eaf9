package query

import (
	"reflect"

	"github.com/Konsultn-Engineering/sqldsl/ast"
)

// EmptyInPolicy decides what IN over an empty sequence becomes.
type EmptyInPolicy int

const (
	// EmptyInAlwaysFalse renders an always false predicate, 1 = 0.
	EmptyInAlwaysFalse EmptyInPolicy = iota
	// EmptyInError fails the condition with ErrInvalidArgument.
	EmptyInError
)

var (
	alwaysFalse = ast.Lit("1 = 0")
	alwaysTrue  = ast.Lit("1 = 1")
)

// operand inlines expressions and binds everything else.
func operand(v any) ast.Fragment {
	if e, ok := v.(ast.Expression); ok {
		return e.ToFragment()
	}
	return ast.Param(v)
}

func expr(e ast.Expression) ast.Fragment {
	if e == nil {
		return ast.Fail(ast.Errorf(ast.ErrCodeInvalidClauseState, "building condition", "nil expression"))
	}
	return e.ToFragment()
}

func binary(col ast.Expression, op ast.Operator, value any) ast.Fragment {
	return ast.Combine(expr(col), ast.Lit(op.Padded()), operand(value))
}

// =========================================================================
// Comparison
// =========================================================================

func Eq(col ast.Expression, value any) ast.Fragment  { return binary(col, ast.OpEqual, value) }
func Ne(col ast.Expression, value any) ast.Fragment  { return binary(col, ast.OpNotEqual, value) }
func Gt(col ast.Expression, value any) ast.Fragment  { return binary(col, ast.OpGreaterThan, value) }
func Lt(col ast.Expression, value any) ast.Fragment  { return binary(col, ast.OpLessThan, value) }
func Gte(col ast.Expression, value any) ast.Fragment { return binary(col, ast.OpGreaterThanOrEqual, value) }
func Lte(col ast.Expression, value any) ast.Fragment { return binary(col, ast.OpLessThanOrEqual, value) }

func Like(col ast.Expression, pattern any) ast.Fragment    { return binary(col, ast.OpLike, pattern) }
func NotLike(col ast.Expression, pattern any) ast.Fragment { return binary(col, ast.OpNotLike, pattern) }

// ILike is case insensitive LIKE. Postgres only.
func ILike(col ast.Expression, pattern any) ast.Fragment { return binary(col, ast.OpILike, pattern) }

func IsNull(col ast.Expression) ast.Fragment {
	return ast.Combine(expr(col), ast.Lit(" "+string(ast.OpIsNull)))
}

func IsNotNull(col ast.Expression) ast.Fragment {
	return ast.Combine(expr(col), ast.Lit(" "+string(ast.OpIsNotNull)))
}

// =========================================================================
// Sets and ranges
// =========================================================================

// In renders col IN (?, ?, ...) with one placeholder per element of values,
// which must be a slice or array. An empty sequence renders 1 = 0. Byte
// slices are rejected since a []byte binds as one value.
func In(col ast.Expression, values any) ast.Fragment {
	return InWith(EmptyInAlwaysFalse, col, values)
}

// InWith is In with an explicit empty sequence policy.
func InWith(policy EmptyInPolicy, col ast.Expression, values any) ast.Fragment {
	return inList(policy, col, ast.OpIn, values)
}

// NotIn renders col NOT IN (...). An empty sequence excludes nothing and
// renders 1 = 1.
func NotIn(col ast.Expression, values any) ast.Fragment {
	return inList(EmptyInAlwaysFalse, col, ast.OpNotIn, values)
}

func inList(policy EmptyInPolicy, col ast.Expression, op ast.Operator, values any) ast.Fragment {
	const while = "building IN condition"

	rv := reflect.ValueOf(values)
	if k := rv.Kind(); k != reflect.Slice && k != reflect.Array {
		return ast.Fail(ast.Errorf(ast.ErrCodeInvalidArgument, while, "expected slice or array, got %T", values))
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return ast.Fail(ast.Errorf(ast.ErrCodeInvalidArgument, while,
			"%T is a single bytes value, not a value list; wrap it as [][]byte", values))
	}

	n := rv.Len()
	if n == 0 {
		left := expr(col)
		if err := left.Err(); err != nil {
			return ast.Fail(err)
		}
		if policy == EmptyInError {
			return ast.Fail(ast.Errorf(ast.ErrCodeInvalidArgument, while, "empty value list for %s", op))
		}
		// The constant keeps the column's alias refs so scope checks do not
		// depend on the list length.
		if op == ast.OpNotIn {
			return alwaysTrue.WithRefs(left.Refs()...)
		}
		return alwaysFalse.WithRefs(left.Refs()...)
	}

	items := make([]ast.Fragment, n)
	for i := range n {
		items[i] = operand(rv.Index(i).Interface())
	}
	return ast.Combine(expr(col), ast.Lit(op.Padded()), ast.Parens(ast.Join(", ", items...)))
}

// InSubquery renders col IN (SELECT ...).
func InSubquery(col ast.Expression, sub ast.Expression) ast.Fragment {
	return ast.Combine(expr(col), ast.Lit(ast.OpIn.Padded()), subquery(sub))
}

func NotInSubquery(col ast.Expression, sub ast.Expression) ast.Fragment {
	return ast.Combine(expr(col), ast.Lit(ast.OpNotIn.Padded()), subquery(sub))
}

func Between(col ast.Expression, lo, hi any) ast.Fragment {
	return ast.Combine(expr(col), ast.Lit(ast.OpBetween.Padded()), operand(lo), ast.Lit(" AND "), operand(hi))
}

func NotBetween(col ast.Expression, lo, hi any) ast.Fragment {
	return ast.Combine(expr(col), ast.Lit(ast.OpNotBetween.Padded()), operand(lo), ast.Lit(" AND "), operand(hi))
}

// =========================================================================
// Subqueries
// =========================================================================

// Exists renders EXISTS (SELECT ...). Parameters of sub are spliced at this
// point.
func Exists(sub ast.Expression) ast.Fragment {
	return ast.Combine(ast.Lit(string(ast.OpExists)+" "), subquery(sub))
}

func NotExists(sub ast.Expression) ast.Fragment {
	return ast.Combine(ast.Lit(string(ast.OpNotExists)+" "), subquery(sub))
}

func subquery(sub ast.Expression) ast.Fragment {
	if sub == nil {
		return ast.Fail(ast.Errorf(ast.ErrCodeInvalidClauseState, "building subquery condition", "nil subquery"))
	}
	return sub.ToFragment()
}

// =========================================================================
// Logical
// =========================================================================

// And joins conditions with AND, parenthesizing each one when there is more
// than one. Empty conditions are skipped.
func And(conds ...ast.Expression) ast.Fragment {
	return logical(ast.OpAnd, conds)
}

// Or joins conditions with OR, parenthesizing each one when there is more
// than one. Empty conditions are skipped.
func Or(conds ...ast.Expression) ast.Fragment {
	return logical(ast.OpOr, conds)
}

func Not(cond ast.Expression) ast.Fragment {
	return ast.Combine(ast.Lit(string(ast.OpNot)+" "), ast.Parens(expr(cond)))
}

func logical(op ast.Operator, conds []ast.Expression) ast.Fragment {
	frags := make([]ast.Fragment, 0, len(conds))
	for _, c := range conds {
		frags = append(frags, expr(c))
	}
	return joinConditions(op, frags)
}

func joinConditions(op ast.Operator, frags []ast.Fragment) ast.Fragment {
	present := make([]ast.Fragment, 0, len(frags))
	var failed ast.Fragment
	for _, f := range frags {
		if f.Err() != nil && failed.Err() == nil {
			failed = f
		}
		if !f.IsEmpty() {
			present = append(present, f)
		}
	}
	if err := failed.Err(); err != nil {
		return ast.Fail(err)
	}

	switch len(present) {
	case 0:
		return ast.Empty()
	case 1:
		return present[0]
	}
	for i, f := range present {
		present[i] = ast.Parens(f)
	}
	return ast.Join(op.Padded(), present...)
}

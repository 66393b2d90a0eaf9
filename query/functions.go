package query

import (
	"strings"

	"github.com/Konsultn-Engineering/sqldsl/ast"
)

func call(name string, args ...ast.Fragment) ast.Fragment {
	return ast.Combine(ast.Lit(name), ast.Parens(ast.Join(", ", args...)))
}

func Count(e ast.Expression) ast.Fragment { return call("COUNT", expr(e)) }

func CountAll() ast.Fragment { return ast.Lit("COUNT(*)") }

func Sum(e ast.Expression) ast.Fragment { return call("SUM", expr(e)) }
func Avg(e ast.Expression) ast.Fragment { return call("AVG", expr(e)) }
func Min(e ast.Expression) ast.Fragment { return call("MIN", expr(e)) }
func Max(e ast.Expression) ast.Fragment { return call("MAX", expr(e)) }

// Distinct prefixes e with DISTINCT, for use inside aggregates:
// Count(Distinct(c)) renders COUNT(DISTINCT c).
func Distinct(e ast.Expression) ast.Fragment {
	return ast.Combine(ast.Lit("DISTINCT "), expr(e))
}

// Coalesce takes expressions and plain values; plain values are bound.
func Coalesce(args ...any) ast.Fragment {
	frags := make([]ast.Fragment, len(args))
	for i, a := range args {
		frags[i] = operand(a)
	}
	return call("COALESCE", frags...)
}

// Func calls an arbitrary SQL function. Expression args are inlined, other
// args are bound.
func Func(name string, args ...any) ast.Fragment {
	if !ast.IsIdent(name) {
		return ast.Fail(ast.Errorf(ast.ErrCodeInvalidArgument, "building function call", "invalid function name %q", name))
	}
	frags := make([]ast.Fragment, len(args))
	for i, a := range args {
		frags[i] = operand(a)
	}
	return call(strings.ToUpper(name), frags...)
}

// Aliased is an expression with an explicit result name.
type Aliased struct {
	Expr  ast.Fragment
	Alias string
}

// As names the result column of e: As(Count(o.Col("id")), "n") renders
// COUNT(o.id) AS n.
func As(e ast.Expression, alias string) Aliased {
	return Aliased{Expr: expr(e), Alias: alias}
}

func (a Aliased) ToFragment() ast.Fragment { return a.Expr }

func (a Aliased) ProjectionFragment() ast.Fragment {
	if !ast.IsIdent(a.Alias) {
		return ast.Fail(ast.Errorf(ast.ErrCodeInvalidArgument, "building projection", "invalid result alias %q", a.Alias))
	}
	return ast.Combine(a.Expr, ast.Lit(" AS "), ast.Ident(a.Alias))
}

func (a Aliased) ResultName() string { return a.Alias }

package query

import (
	"github.com/Konsultn-Engineering/sqldsl/ast"
	"github.com/Konsultn-Engineering/sqldsl/dialect"
	"github.com/Konsultn-Engineering/sqldsl/visitor"
)

// Statement is what every builder produces: clause state ready for the
// renderer, or the first construction error.
type Statement interface {
	Node() ast.Node
	Err() error
	Fragment() (ast.Fragment, error)
	ToSQL(d dialect.Dialect) (string, []any, error)
}

var (
	_ Statement = SelectBuilder{}
	_ Statement = InsertBuilder{}
	_ Statement = UpdateBuilder{}
	_ Statement = DeleteBuilder{}
)

func render(err error, node ast.Node) (ast.Fragment, error) {
	if err != nil {
		return ast.Fragment{}, err
	}
	return visitor.Render(node)
}

func toSQL(err error, node ast.Node, d dialect.Dialect) (string, []any, error) {
	if err != nil {
		return "", nil, err
	}
	return visitor.Build(node, d)
}

// errorer is implemented by sources that can be invalid, such as alias
// bindings with a bad alias.
type errorer interface {
	Err() error
}

func sourceOf(while string, src ast.Sourcer) (ast.Source, error) {
	if src == nil {
		return nil, ast.Errorf(ast.ErrCodeInvalidClauseState, while, "nil source")
	}
	if e, ok := src.(errorer); ok && e.Err() != nil {
		return nil, e.Err()
	}
	s := src.Source()
	if s == nil {
		return nil, ast.Errorf(ast.ErrCodeInvalidClauseState, while, "nil source")
	}
	return s, nil
}

// conjoin adds next to prev with op, parenthesizing both sides once there
// are two.
func conjoin(op ast.Operator, prev, next ast.Fragment) ast.Fragment {
	if prev.IsEmpty() {
		return next
	}
	if next.IsEmpty() {
		return prev
	}
	return ast.Combine(ast.Parens(prev), ast.Lit(op.Padded()), ast.Parens(next))
}

// condition resolves a condition and checks it against scope.
func condition(while string, scope []ast.Ref, cond ast.Expression) (ast.Fragment, error) {
	f := expr(cond)
	if err := ast.CheckRefs(while, scope, f); err != nil {
		return ast.Fragment{}, err
	}
	return f, nil
}

// ownColumn checks that col belongs to the statement's target table.
func ownColumn(while string, target *ast.Table, col ast.ColumnRef) error {
	if col.Err != nil {
		return col.Err
	}
	ref := ast.SourceRef(target)
	if col.Qualifier != "" && (col.Qualifier != ref.Alias || col.Source != ref.Source) {
		return ast.Errorf(ast.ErrCodeUnboundAlias, while, "column %s.%s does not belong to %q", col.Qualifier, col.Name, target.Name)
	}
	return nil
}

package visitor

import (
	"strconv"
	"sync"

	"github.com/Konsultn-Engineering/sqldsl/ast"
)

var visitorPool = sync.Pool{
	New: func() any {
		return &SQLVisitor{
			parts: make([]ast.Fragment, 0, 32),
		}
	},
}

// SQLVisitor linearizes clause state into fragments, depth first and left to
// right, so bound values come out in the order their placeholders appear.
type SQLVisitor struct {
	parts []ast.Fragment
}

func NewSQLVisitor() *SQLVisitor {
	v := visitorPool.Get().(*SQLVisitor)
	v.parts = v.parts[:0]
	return v
}

func (v *SQLVisitor) Release() {
	clear(v.parts)
	v.parts = v.parts[:0]
	visitorPool.Put(v)
}

// Fragment combines everything emitted so far.
func (v *SQLVisitor) Fragment() ast.Fragment {
	return ast.Combine(v.parts...)
}

// Render is the pure rendering entry point: the same node always yields the
// same fragment.
func Render(root ast.Node) (ast.Fragment, error) {
	if root == nil {
		return ast.Fragment{}, ast.Errorf(ast.ErrCodeInvalidClauseState, "rendering", "nothing to render")
	}

	v := NewSQLVisitor()
	defer v.Release()

	if err := root.Accept(v); err != nil {
		return ast.Fragment{}, err
	}

	out := v.Fragment()
	if err := out.Err(); err != nil {
		return ast.Fragment{}, err
	}
	return out, nil
}

func (v *SQLVisitor) emit(frags ...ast.Fragment) {
	v.parts = append(v.parts, frags...)
}

func (v *SQLVisitor) lit(s string) {
	v.parts = append(v.parts, ast.Lit(s))
}

func (v *SQLVisitor) list(frags []ast.Fragment) {
	for i, f := range frags {
		if i > 0 {
			v.lit(", ")
		}
		v.emit(f)
	}
}

func (v *SQLVisitor) VisitSelect(s *ast.SelectStmt) error {
	if err := checkSelectScope(s); err != nil {
		return err
	}

	// A primary with its own ordering or paging is parenthesized so that
	// the tail stays with it instead of applying to the compound.
	wrap := len(s.SetOps) > 0 && s.HasTail()
	if wrap {
		v.lit("(")
	}
	if err := v.selectCore(s); err != nil {
		return err
	}
	if err := v.orderAndLimit(s.OrderBy, &s.Limit); err != nil {
		return err
	}
	if s.ForUpdate {
		v.lit(" FOR UPDATE")
	}
	if wrap {
		v.lit(")")
	}

	for _, op := range s.SetOps {
		if op.Stmt == nil {
			return ast.Errorf(ast.ErrCodeInvalidClauseState, "rendering set operation", "%s operand is nil", op.Kind.Keyword())
		}
		v.lit(" " + op.Kind.Keyword() + " ")
		if op.Stmt.IsCompound() {
			v.lit("(")
		}
		if err := op.Stmt.Accept(v); err != nil {
			return err
		}
		if op.Stmt.IsCompound() {
			v.lit(")")
		}
	}

	if len(s.SetOps) == 0 {
		if len(s.SetOrderBy) > 0 || !s.SetLimit.IsEmpty() {
			return ast.Errorf(ast.ErrCodeInvalidClauseState, "rendering select", "compound ORDER BY or LIMIT without a set operation")
		}
		return nil
	}
	return v.orderAndLimit(s.SetOrderBy, &s.SetLimit)
}

// selectCore renders SELECT through HAVING.
func (v *SQLVisitor) selectCore(s *ast.SelectStmt) error {
	v.lit("SELECT ")
	if s.Distinct {
		v.lit("DISTINCT ")
	}
	if len(s.Columns) == 0 {
		v.lit("*")
	} else {
		v.list(s.Columns)
	}

	if s.From != nil {
		v.lit(" FROM ")
		if err := s.From.Accept(v); err != nil {
			return err
		}
	}

	for _, join := range s.Joins {
		if err := join.Accept(v); err != nil {
			return err
		}
	}

	if !s.Where.IsEmpty() {
		v.lit(" WHERE ")
		v.emit(s.Where)
	}

	if len(s.GroupBy) > 0 {
		v.lit(" GROUP BY ")
		v.list(s.GroupBy)
	}

	if !s.Having.IsEmpty() {
		v.lit(" HAVING ")
		v.emit(s.Having)
	}
	return nil
}

func (v *SQLVisitor) orderAndLimit(order []*ast.OrderByClause, limit *ast.LimitClause) error {
	for i, o := range order {
		if i == 0 {
			v.lit(" ORDER BY ")
		} else {
			v.lit(", ")
		}
		if err := o.Accept(v); err != nil {
			return err
		}
	}

	if !limit.IsEmpty() {
		return limit.Accept(v)
	}
	return nil
}

func (v *SQLVisitor) VisitInsert(stmt *ast.InsertStmt) error {
	const while = "rendering insert"

	if stmt.Table == nil {
		return ast.Errorf(ast.ErrCodeInvalidClauseState, while, "no target table")
	}
	hasRows, hasSelect := len(stmt.Rows) > 0, stmt.Select != nil
	switch {
	case hasRows && hasSelect:
		return ast.Errorf(ast.ErrCodeInvalidClauseState, while, "both VALUES and SELECT given")
	case !hasRows && !hasSelect:
		return ast.Errorf(ast.ErrCodeInvalidClauseState, while, "neither VALUES nor SELECT given")
	case hasRows && len(stmt.Columns) == 0:
		return ast.Errorf(ast.ErrCodeInvalidClauseState, while, "VALUES without a column list")
	}

	v.lit("INSERT INTO ")
	v.emit(stmt.Table.Qualified())

	if len(stmt.Columns) > 0 {
		v.lit(" (")
		v.list(unqualified(stmt.Columns))
		v.lit(")")
	}

	if hasSelect {
		v.lit(" ")
		if err := stmt.Select.Accept(v); err != nil {
			return err
		}
	} else {
		v.lit(" VALUES ")
		for i, row := range stmt.Rows {
			if len(row) != len(stmt.Columns) {
				return ast.Errorf(ast.ErrCodeInvalidClauseState, while,
					"row %d has %d values for %d columns", i, len(row), len(stmt.Columns))
			}
			if i > 0 {
				v.lit(", ")
			}
			v.lit("(")
			v.list(row)
			v.lit(")")
		}
	}

	v.returning(stmt.Returning)
	return nil
}

func (v *SQLVisitor) VisitUpdate(stmt *ast.UpdateStmt) error {
	const while = "rendering update"

	if stmt.Table == nil {
		return ast.Errorf(ast.ErrCodeInvalidClauseState, while, "no target table")
	}
	if len(stmt.Set) == 0 {
		return ast.Errorf(ast.ErrCodeInvalidClauseState, while, "no assignments")
	}
	frags := []ast.Fragment{stmt.Where}
	for _, a := range stmt.Set {
		frags = append(frags, a.Value)
	}
	if err := ast.CheckRefs(while, []ast.Ref{ast.SourceRef(stmt.Table)}, frags...); err != nil {
		return err
	}

	v.lit("UPDATE ")
	v.emit(stmt.Table.Fragment())
	v.lit(" SET ")
	for i, a := range stmt.Set {
		if i > 0 {
			v.lit(", ")
		}
		v.emit(a.Column.Unqualified(), ast.Lit(" = "), a.Value)
	}

	if !stmt.Where.IsEmpty() {
		v.lit(" WHERE ")
		v.emit(stmt.Where)
	}

	v.returning(stmt.Returning)
	return nil
}

func (v *SQLVisitor) VisitDelete(stmt *ast.DeleteStmt) error {
	const while = "rendering delete"

	if stmt.Table == nil {
		return ast.Errorf(ast.ErrCodeInvalidClauseState, while, "no target table")
	}
	if err := ast.CheckRefs(while, []ast.Ref{ast.SourceRef(stmt.Table)}, stmt.Where); err != nil {
		return err
	}

	v.lit("DELETE FROM ")
	v.emit(stmt.Table.Fragment())

	if !stmt.Where.IsEmpty() {
		v.lit(" WHERE ")
		v.emit(stmt.Where)
	}

	v.returning(stmt.Returning)
	return nil
}

func (v *SQLVisitor) VisitTable(t *ast.Table) error {
	v.emit(t.Fragment())
	return nil
}

func (v *SQLVisitor) VisitSubquery(s *ast.Subquery) error {
	if s.Stmt == nil {
		return ast.Errorf(ast.ErrCodeInvalidClauseState, "rendering subquery", "subquery %q has no statement", s.Alias)
	}

	v.lit("(")
	if err := s.Stmt.Accept(v); err != nil {
		return err
	}
	v.lit(") AS ")
	v.emit(ast.Ident(s.Alias))
	return nil
}

func (v *SQLVisitor) VisitJoinClause(clause *ast.JoinClause) error {
	if clause == nil || clause.Target == nil {
		return ast.Errorf(ast.ErrCodeInvalidClauseState, "rendering join", "join has no target")
	}

	v.lit(" " + clause.JoinType.Keyword() + " ")
	if err := clause.Target.Accept(v); err != nil {
		return err
	}

	if !clause.On.IsEmpty() {
		v.lit(" ON ")
		v.emit(clause.On)
	}
	return nil
}

func (v *SQLVisitor) VisitOrderByClause(clause *ast.OrderByClause) error {
	v.emit(clause.Expr)
	v.lit(" " + clause.Dir.String())
	return nil
}

func (v *SQLVisitor) VisitLimitClause(clause *ast.LimitClause) error {
	if clause.Count != nil {
		if *clause.Count < 0 {
			return ast.Errorf(ast.ErrCodeInvalidArgument, "rendering limit", "negative limit %d", *clause.Count)
		}
		v.lit(" LIMIT " + strconv.Itoa(*clause.Count))
	}

	if clause.Offset != nil {
		if *clause.Offset < 0 {
			return ast.Errorf(ast.ErrCodeInvalidArgument, "rendering offset", "negative offset %d", *clause.Offset)
		}
		v.lit(" OFFSET " + strconv.Itoa(*clause.Offset))
	}
	return nil
}

// --- helpers ---

func (v *SQLVisitor) returning(cols []ast.ColumnRef) {
	if len(cols) == 0 {
		return
	}
	v.lit(" RETURNING ")
	v.list(unqualified(cols))
}

func unqualified(cols []ast.ColumnRef) []ast.Fragment {
	out := make([]ast.Fragment, len(cols))
	for i, c := range cols {
		out[i] = c.Unqualified()
	}
	return out
}

func checkSelectScope(s *ast.SelectStmt) error {
	const while = "rendering select"

	scope := s.Scope()
	frags := make([]ast.Fragment, 0, len(s.Columns)+len(s.GroupBy)+len(s.OrderBy)+len(s.Joins)+2)
	frags = append(frags, s.Columns...)
	frags = append(frags, s.Where, s.Having)
	frags = append(frags, s.GroupBy...)
	for _, j := range s.Joins {
		frags = append(frags, j.On)
	}
	for _, o := range s.OrderBy {
		frags = append(frags, o.Expr)
	}
	if err := ast.CheckRefs(while, scope, frags...); err != nil {
		return err
	}

	for _, o := range s.SetOrderBy {
		if len(o.Expr.Refs()) > 0 {
			return ast.Errorf(ast.ErrCodeUnboundAlias, while, "compound ORDER BY must name result columns, not %s", o.Expr.Template())
		}
	}
	return nil
}

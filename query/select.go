package query

import (
	"slices"
	"strings"

	"github.com/Konsultn-Engineering/sqldsl/ast"
	"github.com/Konsultn-Engineering/sqldsl/dialect"
)

// =========================================================================
// Projection
// =========================================================================

// SelectProjection is a SELECT before its FROM. It only allows choosing the
// source.
type SelectProjection struct {
	columns  []ast.Fragment
	names    []string
	distinct bool
	err      error
}

// Select starts a SELECT of the given expressions. Column refs keep their
// alias.column result names; use As or ColumnRef.As to name other items.
func Select(cols ...ast.Expression) SelectProjection {
	p := SelectProjection{
		columns: make([]ast.Fragment, 0, len(cols)),
		names:   make([]string, 0, len(cols)),
	}
	for _, c := range cols {
		var (
			f    ast.Fragment
			name string
		)
		switch c := c.(type) {
		case nil:
			f = ast.Fail(ast.Errorf(ast.ErrCodeInvalidClauseState, "building projection", "nil projection item"))
		case ast.Projection:
			f, name = c.ProjectionFragment(), c.ResultName()
		default:
			f = c.ToFragment()
		}
		if err := f.Err(); err != nil && p.err == nil {
			p.err = err
		}
		p.columns = append(p.columns, f)
		p.names = append(p.names, name)
	}
	return p
}

// Columns adapts column refs, such as AliasBinding.All(), for Select.
func Columns(refs ...ast.ColumnRef) []ast.Expression {
	out := make([]ast.Expression, len(refs))
	for i, r := range refs {
		out[i] = r
	}
	return out
}

func (p SelectProjection) Distinct() SelectProjection {
	p.distinct = true
	return p
}

func (p SelectProjection) From(src ast.Sourcer) SelectBuilder {
	stmt := ast.NewSelectStmt()
	stmt.Columns = p.columns
	stmt.Names = p.names
	stmt.Distinct = p.distinct

	sb := SelectBuilder{stmt: stmt, err: p.err}
	if sb.err != nil {
		return sb
	}
	from, err := sourceOf("building from", src)
	if err != nil {
		return sb.fail(err)
	}
	stmt.From = from
	return sb
}

// SelectFrom is Select().From(src): every column of src.
func SelectFrom(src ast.Sourcer) SelectBuilder {
	return Select().From(src)
}

// =========================================================================
// Builder
// =========================================================================

// SelectBuilder is an immutable SELECT. Every transition returns a new
// builder and leaves the receiver untouched, so a partially built query can
// be shared and branched. The first construction error sticks: later
// transitions are no-ops and Err, Fragment and ToSQL report it.
type SelectBuilder struct {
	stmt *ast.SelectStmt
	err  error
}

func (sb SelectBuilder) fail(err error) SelectBuilder {
	if sb.err == nil {
		sb.err = err
	}
	return sb
}

// with applies fn to a copy of the statement.
func (sb SelectBuilder) with(fn func(stmt *ast.SelectStmt) error) SelectBuilder {
	if sb.err != nil {
		return sb
	}
	if sb.stmt == nil {
		return sb.fail(ast.Errorf(ast.ErrCodeInvalidClauseState, "building select", "select has no FROM"))
	}
	stmt := sb.stmt.Clone()
	if err := fn(stmt); err != nil {
		return sb.fail(err)
	}
	return SelectBuilder{stmt: stmt}
}

// If applies fn when ok is true and is the identity otherwise.
func (sb SelectBuilder) If(ok bool, fn func(SelectBuilder) SelectBuilder) SelectBuilder {
	if !ok || sb.err != nil {
		return sb
	}
	return fn(sb)
}

// --- joins ---

// JoinStep is a join awaiting its ON condition.
type JoinStep struct {
	sb     SelectBuilder
	kind   ast.JoinType
	target ast.Sourcer
}

func (sb SelectBuilder) InnerJoin(target ast.Sourcer) JoinStep {
	return JoinStep{sb: sb, kind: ast.JoinInner, target: target}
}

func (sb SelectBuilder) LeftJoin(target ast.Sourcer) JoinStep {
	return JoinStep{sb: sb, kind: ast.JoinLeft, target: target}
}

func (sb SelectBuilder) RightJoin(target ast.Sourcer) JoinStep {
	return JoinStep{sb: sb, kind: ast.JoinRight, target: target}
}

func (sb SelectBuilder) FullJoin(target ast.Sourcer) JoinStep {
	return JoinStep{sb: sb, kind: ast.JoinFull, target: target}
}

// On joins on left = right.
func (j JoinStep) On(left, right ast.Expression) SelectBuilder {
	return j.OnCondition(binary(left, ast.OpEqual, right))
}

// OnCondition joins on an arbitrary condition. The condition may reference
// the joined source and everything already in scope.
func (j JoinStep) OnCondition(cond ast.Expression) SelectBuilder {
	const while = "building join"

	return j.sb.with(func(stmt *ast.SelectStmt) error {
		target, err := sourceOf(while, j.target)
		if err != nil {
			return err
		}

		ref := ast.SourceRef(target)
		if ref.Alias == "" {
			return ast.Errorf(ast.ErrCodeInvalidClauseState, while, "join target has no alias")
		}
		for _, r := range stmt.Scope() {
			if r.Alias == ref.Alias {
				return ast.Errorf(ast.ErrCodeInvalidClauseState, while, "alias %q is already bound", ref.Alias)
			}
		}

		on, err := condition(while, append(stmt.Scope(), ref), cond)
		if err != nil {
			return err
		}
		stmt.Joins = append(stmt.Joins, &ast.JoinClause{JoinType: j.kind, Target: target, On: on})
		return nil
	})
}

// --- filtering ---

// Where adds a condition. Repeated calls AND the conditions together.
func (sb SelectBuilder) Where(cond ast.Expression) SelectBuilder {
	return sb.where(ast.OpAnd, cond)
}

// And is Where.
func (sb SelectBuilder) And(cond ast.Expression) SelectBuilder {
	return sb.where(ast.OpAnd, cond)
}

// Or ORs cond with the whole existing WHERE condition.
func (sb SelectBuilder) Or(cond ast.Expression) SelectBuilder {
	return sb.where(ast.OpOr, cond)
}

// WhereOpt adds the condition when present and is a no-op otherwise.
func (sb SelectBuilder) WhereOpt(opt Option) SelectBuilder {
	cond, ok := opt.Get()
	if !ok {
		return sb
	}
	return sb.where(ast.OpAnd, cond)
}

func (sb SelectBuilder) where(op ast.Operator, cond ast.Expression) SelectBuilder {
	return sb.with(func(stmt *ast.SelectStmt) error {
		f, err := condition("building where", stmt.Scope(), cond)
		if err != nil {
			return err
		}
		stmt.Where = conjoin(op, stmt.Where, f)
		return nil
	})
}

// --- grouping ---

func (sb SelectBuilder) GroupBy(exprs ...ast.Expression) SelectBuilder {
	return sb.with(func(stmt *ast.SelectStmt) error {
		for _, e := range exprs {
			f, err := condition("building group by", stmt.Scope(), e)
			if err != nil {
				return err
			}
			stmt.GroupBy = append(stmt.GroupBy, f)
		}
		return nil
	})
}

// Having adds a HAVING condition. Repeated calls AND the conditions.
func (sb SelectBuilder) Having(cond ast.Expression) SelectBuilder {
	return sb.with(func(stmt *ast.SelectStmt) error {
		f, err := condition("building having", stmt.Scope(), cond)
		if err != nil {
			return err
		}
		stmt.Having = conjoin(ast.OpAnd, stmt.Having, f)
		return nil
	})
}

// --- ordering and paging ---

// OrderBy adds a sort key. Before any set operation it orders the primary
// SELECT. After Union and friends it orders the compound result, and e must
// then be one of the projected items: it renders by its output name.
func (sb SelectBuilder) OrderBy(e ast.Expression, dir ast.Direction) SelectBuilder {
	const while = "building order by"

	return sb.with(func(stmt *ast.SelectStmt) error {
		if len(stmt.SetOps) > 0 {
			f, err := resultColumn(while, stmt, e)
			if err != nil {
				return err
			}
			stmt.SetOrderBy = append(stmt.SetOrderBy, &ast.OrderByClause{Expr: f, Dir: dir})
			return nil
		}

		f, err := condition(while, stmt.Scope(), e)
		if err != nil {
			return err
		}
		stmt.OrderBy = append(stmt.OrderBy, &ast.OrderByClause{Expr: f, Dir: dir})
		return nil
	})
}

// resultColumn resolves e to the output column name of a projected item.
func resultColumn(while string, stmt *ast.SelectStmt, e ast.Expression) (ast.Fragment, error) {
	if err := expr(e).Err(); err != nil {
		return ast.Fragment{}, err
	}
	p, ok := e.(ast.Projection)
	if !ok || !slices.Contains(stmt.Names, p.ResultName()) {
		return ast.Fragment{}, ast.Errorf(ast.ErrCodeInvalidClauseState, while,
			"ordering a compound select needs a projected column, got %s", expr(e).Template())
	}
	if c, ok := e.(ast.ColumnRef); ok && c.ResultAlias == "" {
		return ast.Ident(c.Name), nil
	}
	return ast.Ident(p.ResultName()), nil
}

// paging returns the LIMIT clause a Limit or Offset call applies to: the
// compound's once a set operation was added, else the primary's.
func paging(stmt *ast.SelectStmt) *ast.LimitClause {
	if len(stmt.SetOps) > 0 {
		return &stmt.SetLimit
	}
	return &stmt.Limit
}

// Limit fails with ErrInvalidArgument when n is negative. After a set
// operation it limits the compound result.
func (sb SelectBuilder) Limit(n int) SelectBuilder {
	return sb.with(func(stmt *ast.SelectStmt) error {
		if n < 0 {
			return ast.Errorf(ast.ErrCodeInvalidArgument, "building limit", "negative limit %d", n)
		}
		paging(stmt).Count = &n
		return nil
	})
}

// Offset fails with ErrInvalidArgument when n is negative.
func (sb SelectBuilder) Offset(n int) SelectBuilder {
	return sb.with(func(stmt *ast.SelectStmt) error {
		if n < 0 {
			return ast.Errorf(ast.ErrCodeInvalidArgument, "building offset", "negative offset %d", n)
		}
		paging(stmt).Offset = &n
		return nil
	})
}

func (sb SelectBuilder) Paginate(limit, offset int) SelectBuilder {
	return sb.Limit(limit).Offset(offset)
}

// ForUpdate appends FOR UPDATE.
func (sb SelectBuilder) ForUpdate() SelectBuilder {
	return sb.with(func(stmt *ast.SelectStmt) error {
		if len(stmt.SetOps) > 0 {
			return ast.Errorf(ast.ErrCodeInvalidClauseState, "building for update", "FOR UPDATE is not allowed with set operations")
		}
		stmt.ForUpdate = true
		return nil
	})
}

// Correlate declares outer sources that this query, used as a subquery, may
// reference. The enclosing query checks those references against its own
// scope.
func (sb SelectBuilder) Correlate(outer ...ast.Sourcer) SelectBuilder {
	return sb.with(func(stmt *ast.SelectStmt) error {
		for _, o := range outer {
			src, err := sourceOf("correlating subquery", o)
			if err != nil {
				return err
			}
			stmt.Correlated = append(stmt.Correlated, ast.SourceRef(src))
		}
		return nil
	})
}

// --- set operations ---

func (sb SelectBuilder) Union(other SelectBuilder) SelectBuilder {
	return sb.setOp(ast.Union, other)
}

func (sb SelectBuilder) UnionAll(other SelectBuilder) SelectBuilder {
	return sb.setOp(ast.UnionAll, other)
}

func (sb SelectBuilder) Intersect(other SelectBuilder) SelectBuilder {
	return sb.setOp(ast.Intersect, other)
}

func (sb SelectBuilder) Except(other SelectBuilder) SelectBuilder {
	return sb.setOp(ast.Except, other)
}

func (sb SelectBuilder) setOp(kind ast.SetOpKind, other SelectBuilder) SelectBuilder {
	return sb.with(func(stmt *ast.SelectStmt) error {
		if other.err != nil {
			return other.err
		}
		if other.stmt == nil {
			return ast.Errorf(ast.ErrCodeInvalidClauseState, "building "+strings.ToLower(kind.Keyword()), "operand has no FROM")
		}
		if stmt.ForUpdate || other.stmt.ForUpdate {
			return ast.Errorf(ast.ErrCodeInvalidClauseState, "building "+strings.ToLower(kind.Keyword()),
				"FOR UPDATE is not allowed with set operations")
		}
		if a, b := len(stmt.Columns), len(other.stmt.Columns); a > 0 && b > 0 && a != b {
			return ast.Errorf(ast.ErrCodeInvalidClauseState, "building "+strings.ToLower(kind.Keyword()),
				"operands select %d and %d columns", a, b)
		}
		stmt.SetOps = append(stmt.SetOps, ast.SetOp{Kind: kind, Stmt: other.stmt})
		return nil
	})
}

// =========================================================================
// Terminal operations
// =========================================================================

func (sb SelectBuilder) Err() error {
	if sb.err == nil && sb.stmt == nil {
		return ast.Errorf(ast.ErrCodeInvalidClauseState, "building select", "select has no FROM")
	}
	return sb.err
}

// Stmt returns a copy of the clause state.
func (sb SelectBuilder) Stmt() *ast.SelectStmt {
	if sb.stmt == nil {
		return nil
	}
	return sb.stmt.Clone()
}

func (sb SelectBuilder) Node() ast.Node {
	if sb.stmt == nil {
		return nil
	}
	return sb.stmt
}

// Fragment renders the statement with ? placeholders and unquoted
// identifiers.
func (sb SelectBuilder) Fragment() (ast.Fragment, error) {
	return render(sb.Err(), sb.Node())
}

func (sb SelectBuilder) ToSQL(d dialect.Dialect) (string, []any, error) {
	return toSQL(sb.Err(), sb.Node(), d)
}

// ToFragment renders the query parenthesized, for use as a scalar
// subquery or inside EXISTS and IN. Only correlated references escape to
// the enclosing query.
func (sb SelectBuilder) ToFragment() ast.Fragment {
	f, err := sb.Fragment()
	if err != nil {
		return ast.Fail(err)
	}
	return ast.Parens(f).WithRefs(sb.stmt.Correlated...)
}

// ResultNames lists, per projection item, the name a row mapper finds it
// under: the explicit result alias, else alias.column for column refs, else
// "" for unnamed expressions. A SELECT * yields nil.
func (sb SelectBuilder) ResultNames() []string {
	if sb.stmt == nil || len(sb.stmt.Names) == 0 {
		return nil
	}
	return append([]string(nil), sb.stmt.Names...)
}

// As wraps the query as a derived table under alias.
func (sb SelectBuilder) As(alias string) SubqueryBinding {
	return newSubqueryBinding(sb, alias)
}

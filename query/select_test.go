package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/sqldsl/ast"
	"github.com/Konsultn-Engineering/sqldsl/dialect"
	"github.com/Konsultn-Engineering/sqldsl/schema"
)

// =========================================================================
// Fixtures
// =========================================================================

var (
	orders   = schema.NewEntity("order", "id", "product_id", "customer_id", "total", "status")
	products = schema.NewEntity("product", "id", "name", "price")
	users    = schema.NewEntity("customer", "id", "name", "email")
)

func mustFragment(t *testing.T, s Statement) ast.Fragment {
	t.Helper()
	f, err := s.Fragment()
	require.NoError(t, err)
	return f
}

// =========================================================================
// End to end
// =========================================================================

func TestSelect_EndToEnd(t *testing.T) {
	o := orders.As("o")

	q := Select(o.Col("id")).
		From(o).
		Where(Eq(o.Col("productId"), 123)).
		OrderBy(o.Col("id"), ast.Desc).
		Limit(4).
		Offset(0)

	f := mustFragment(t, q)
	assert.Equal(t, "SELECT o.id FROM order AS o WHERE o.product_id = ? ORDER BY o.id DESC LIMIT 4 OFFSET 0", f.Template())
	assert.Equal(t, []any{123}, f.Params())
	assert.Equal(t, []string{"o.id"}, q.ResultNames())

	sql, args, err := q.ToSQL(dialect.NewPostgresDialect())
	require.NoError(t, err)
	assert.Equal(t, "SELECT o.id FROM order AS o WHERE o.product_id = $1 ORDER BY o.id DESC LIMIT 4 OFFSET 0", sql)
	assert.Equal(t, []any{123}, args)
}

func TestSelect_RenderTwiceIsIdentical(t *testing.T) {
	o := orders.As("o")
	q := SelectFrom(o).Where(In(o.Col("status"), []string{"new", "paid"}))

	a := mustFragment(t, q)
	b := mustFragment(t, q)
	assert.Equal(t, a.Template(), b.Template())
	assert.Equal(t, a.Params(), b.Params())
	assert.Equal(t, "SELECT * FROM order AS o WHERE o.status IN (?, ?)", a.Template())
}

// =========================================================================
// Immutability
// =========================================================================

func TestSelect_BranchesAreIndependent(t *testing.T) {
	o := orders.As("o")
	base := SelectFrom(o).Where(Gt(o.Col("total"), 10))

	paid := base.Where(Eq(o.Col("status"), "paid")).OrderBy(o.Col("id"), ast.Asc)
	open := base.Where(Eq(o.Col("status"), "open")).Limit(5)

	assert.Equal(t, "SELECT * FROM order AS o WHERE o.total > ?", mustFragment(t, base).Template())
	assert.Equal(t, []any{10}, mustFragment(t, base).Params())

	assert.Equal(t,
		"SELECT * FROM order AS o WHERE (o.total > ?) AND (o.status = ?) ORDER BY o.id ASC",
		mustFragment(t, paid).Template())
	assert.Equal(t, []any{10, "paid"}, mustFragment(t, paid).Params())

	assert.Equal(t,
		"SELECT * FROM order AS o WHERE (o.total > ?) AND (o.status = ?) LIMIT 5",
		mustFragment(t, open).Template())
	assert.Equal(t, []any{10, "open"}, mustFragment(t, open).Params())
}

func TestSelect_AppendAfterBranchDoesNotAlias(t *testing.T) {
	o := orders.As("o")
	base := Select(o.Col("id"), o.Col("total")).From(o).GroupBy(o.Col("id"))

	a := base.GroupBy(o.Col("total"))
	b := base.GroupBy(o.Col("status"))

	assert.Contains(t, mustFragment(t, a).Template(), "GROUP BY o.id, o.total")
	assert.Contains(t, mustFragment(t, b).Template(), "GROUP BY o.id, o.status")
}

// =========================================================================
// Conditions in builders
// =========================================================================

func TestSelect_OrCombinesWholeCondition(t *testing.T) {
	o := orders.As("o")
	q := SelectFrom(o).
		Where(Eq(o.Col("status"), "new")).
		And(Gt(o.Col("total"), 5)).
		Or(IsNull(o.Col("customer_id")))

	assert.Equal(t,
		"SELECT * FROM order AS o WHERE ((o.status = ?) AND (o.total > ?)) OR (o.customer_id IS NULL)",
		mustFragment(t, q).Template())
}

func TestSelect_OptionalConditions(t *testing.T) {
	o := orders.As("o")

	var status *string
	minTotal := 0

	q := SelectFrom(o).WhereOpt(AndOpt(
		IfPresent(status, func(s string) ast.Fragment { return Eq(o.Col("status"), s) }),
		IfNotZero(minTotal, func(n int) ast.Fragment { return Gte(o.Col("total"), n) }),
	))
	f := mustFragment(t, q)
	assert.Equal(t, "SELECT * FROM order AS o", f.Template())
	assert.Empty(t, f.Params())

	paid := "paid"
	q = SelectFrom(o).WhereOpt(AndOpt(
		IfPresent(&paid, func(s string) ast.Fragment { return Eq(o.Col("status"), s) }),
		IfNotZero(minTotal, func(n int) ast.Fragment { return Gte(o.Col("total"), n) }),
	))
	f = mustFragment(t, q)
	assert.Equal(t, "SELECT * FROM order AS o WHERE o.status = ?", f.Template())
	assert.Equal(t, []any{"paid"}, f.Params())
}

func TestSelect_EmptyIn(t *testing.T) {
	o := orders.As("o")

	f := mustFragment(t, SelectFrom(o).Where(In(o.Col("id"), []int{})))
	assert.Equal(t, "SELECT * FROM order AS o WHERE 1 = 0", f.Template())
	assert.Empty(t, f.Params())

	q := SelectFrom(o).Where(InWith(EmptyInError, o.Col("id"), []int{}))
	assert.True(t, ast.IsInvalidArgument(q.Err()))
}

func TestSelect_EmptyInStillChecksAlias(t *testing.T) {
	o, c := orders.As("o"), users.As("c")

	for name, cond := range map[string]ast.Fragment{
		"in empty":     In(c.Col("id"), []int{}),
		"in one":       In(c.Col("id"), []int{1}),
		"not in empty": NotIn(c.Col("id"), []int{}),
	} {
		t.Run(name, func(t *testing.T) {
			q := SelectFrom(o).Where(cond)
			assert.True(t, ast.IsUnboundAlias(q.Err()), "%v", q.Err())
		})
	}

	f := mustFragment(t, SelectFrom(o).Where(NotIn(o.Col("id"), []int{})))
	assert.Equal(t, "SELECT * FROM order AS o WHERE 1 = 1", f.Template())
}

func TestSelect_InRejectsNonSequence(t *testing.T) {
	o := orders.As("o")
	q := SelectFrom(o).Where(In(o.Col("id"), 42))
	assert.True(t, ast.IsInvalidArgument(q.Err()))
}

// =========================================================================
// Joins
// =========================================================================

func TestSelect_JoinsRenderInDeclarationOrder(t *testing.T) {
	o, p, c := orders.As("o"), products.As("p"), users.As("c")

	q := Select(o.Col("id"), p.Col("name"), c.Col("email")).
		From(o).
		InnerJoin(p).On(o.Col("product_id"), p.Col("id")).
		LeftJoin(c).OnCondition(And(Eq(o.Col("customer_id"), c.Col("id")), IsNotNull(c.Col("email")))).
		Where(Gt(p.Col("price"), 100))

	f := mustFragment(t, q)
	assert.Equal(t,
		"SELECT o.id, p.name, c.email FROM order AS o"+
			" INNER JOIN product AS p ON o.product_id = p.id"+
			" LEFT JOIN customer AS c ON (o.customer_id = c.id) AND (c.email IS NOT NULL)"+
			" WHERE p.price > ?",
		f.Template())
	assert.Equal(t, []any{100}, f.Params())
	assert.Equal(t, []string{"o.id", "p.name", "c.email"}, q.ResultNames())
}

func TestSelect_JoinErrors(t *testing.T) {
	o, p := orders.As("o"), products.As("p")

	dup := SelectFrom(o).InnerJoin(orders.As("o")).On(o.Col("id"), o.Col("id"))
	assert.True(t, ast.IsInvalidClauseState(dup.Err()))

	c := users.As("c")
	unbound := SelectFrom(o).InnerJoin(p).On(o.Col("product_id"), c.Col("id"))
	assert.True(t, ast.IsUnboundAlias(unbound.Err()))
}

// =========================================================================
// Construction errors
// =========================================================================

func TestSelect_UnboundAliasFailsAtCall(t *testing.T) {
	o, p := orders.As("o"), products.As("p")

	q := SelectFrom(o).Where(Eq(p.Col("id"), 1))
	require.Error(t, q.Err())
	assert.True(t, ast.IsUnboundAlias(q.Err()))
	assert.Contains(t, q.Err().Error(), `alias "p"`)

	// sticky: later transitions keep the first error
	q = q.Where(Eq(o.Col("nope"), 1)).Limit(-1)
	assert.True(t, ast.IsUnboundAlias(q.Err()))

	_, _, err := q.ToSQL(dialect.NewPostgresDialect())
	assert.True(t, ast.IsUnboundAlias(err))
}

func TestSelect_UnboundProjectionFailsAtRender(t *testing.T) {
	o, p := orders.As("o"), products.As("p")

	q := Select(o.Col("id"), p.Col("name")).From(o)
	_, err := q.Fragment()
	assert.True(t, ast.IsUnboundAlias(err))

	q = q.InnerJoin(p).On(o.Col("product_id"), p.Col("id"))
	_, err = q.Fragment()
	assert.NoError(t, err)
}

func TestSelect_NegativePaging(t *testing.T) {
	o := orders.As("o")

	assert.True(t, ast.IsInvalidArgument(SelectFrom(o).Limit(-1).Err()))
	assert.True(t, ast.IsInvalidArgument(SelectFrom(o).Offset(-5).Err()))
	assert.True(t, ast.IsInvalidArgument(SelectFrom(o).Paginate(10, -1).Err()))
}

func TestSelect_UnknownColumn(t *testing.T) {
	o := orders.As("o")
	q := Select(o.Col("missing")).From(o)
	assert.True(t, ast.IsInvalidArgument(q.Err()))
}

func TestSelect_ZeroValue(t *testing.T) {
	var q SelectBuilder
	assert.True(t, ast.IsInvalidClauseState(q.Err()))
	assert.True(t, ast.IsInvalidClauseState(q.Where(Eq(ast.Lit("1"), 1)).Err()))
}

// =========================================================================
// Aggregates, grouping, set operations
// =========================================================================

func TestSelect_Aggregates(t *testing.T) {
	o := orders.As("o")

	q := Select(o.Col("customer_id"), As(Count(Distinct(o.Col("product_id"))), "products"), As(Sum(o.Col("total")), "spent")).
		From(o).
		GroupBy(o.Col("customer_id")).
		Having(Gt(Sum(o.Col("total")), 1000)).
		OrderBy(Sum(o.Col("total")), ast.Desc)

	f := mustFragment(t, q)
	assert.Equal(t,
		"SELECT o.customer_id, COUNT(DISTINCT o.product_id) AS products, SUM(o.total) AS spent"+
			" FROM order AS o GROUP BY o.customer_id HAVING SUM(o.total) > ? ORDER BY SUM(o.total) DESC",
		f.Template())
	assert.Equal(t, []any{1000}, f.Params())
	assert.Equal(t, []string{"o.customer_id", "products", "spent"}, q.ResultNames())
}

func TestSelect_Functions(t *testing.T) {
	o := orders.As("o")

	q := Select(CountAll(), As(Coalesce(Max(o.Col("total")), 0), "top"), Func("lower", o.Col("status"))).From(o)
	f := mustFragment(t, q)
	assert.Equal(t, "SELECT COUNT(*), COALESCE(MAX(o.total), ?) AS top, LOWER(o.status) FROM order AS o", f.Template())
	assert.Equal(t, []any{0}, f.Params())
	assert.Equal(t, []string{"", "top", ""}, q.ResultNames())

	assert.True(t, ast.IsInvalidArgument(Func("drop table", 1).Err()))
}

func TestSelect_ResultAliases(t *testing.T) {
	o := orders.As("o")

	q := Select(Columns(o.Results()...)...).From(o)
	assert.Equal(t,
		[]string{"o_id", "o_product_id", "o_customer_id", "o_total", "o_status"},
		q.ResultNames())
	assert.Contains(t, mustFragment(t, q).Template(), "o.product_id AS o_product_id")
}

func TestSelect_SetOperations(t *testing.T) {
	o := orders.As("o")

	paid := Select(o.Col("id")).From(o).Where(Eq(o.Col("status"), "paid"))
	big := Select(o.Col("id")).From(o).Where(Gt(o.Col("total"), 500))
	latest := Select(o.Col("id")).From(o).OrderBy(o.Col("id"), ast.Desc).Limit(1)

	q := paid.Union(big).UnionAll(latest).OrderBy(o.Col("id"), ast.Asc).Limit(10)
	f := mustFragment(t, q)
	assert.Equal(t,
		"SELECT o.id FROM order AS o WHERE o.status = ?"+
			" UNION SELECT o.id FROM order AS o WHERE o.total > ?"+
			" UNION ALL (SELECT o.id FROM order AS o ORDER BY o.id DESC LIMIT 1)"+
			" ORDER BY id ASC LIMIT 10",
		f.Template())
	assert.Equal(t, []any{"paid", 500}, f.Params())

	mismatch := paid.Union(Select(o.Col("id"), o.Col("total")).From(o))
	assert.True(t, ast.IsInvalidClauseState(mismatch.Err()))
}

func TestSelect_SetOperationKeepsPrimaryTail(t *testing.T) {
	o, p := orders.As("o"), products.As("p")

	recent := Select(o.Col("id")).From(o).
		Where(Eq(o.Col("status"), "paid")).
		OrderBy(o.Col("id"), ast.Desc).
		Limit(5)
	named := Select(p.Col("id")).From(p).Where(Eq(p.Col("name"), "tea"))

	f := mustFragment(t, recent.Union(named))
	assert.Equal(t,
		"(SELECT o.id FROM order AS o WHERE o.status = ? ORDER BY o.id DESC LIMIT 5)"+
			" UNION SELECT p.id FROM product AS p WHERE p.name = ?",
		f.Template())
	assert.Equal(t, []any{"paid", "tea"}, f.Params())
}

func TestSelect_CompoundOrderByResultNames(t *testing.T) {
	o, p := orders.As("o"), products.As("p")

	a := Select(As(o.Col("total"), "amount"), o.Col("id")).From(o)
	b := Select(p.Col("price"), p.Col("id")).From(p)

	f := mustFragment(t, a.Union(b).OrderBy(As(o.Col("total"), "amount"), ast.Desc).OrderBy(o.Col("id"), ast.Asc))
	assert.Equal(t,
		"SELECT o.total AS amount, o.id FROM order AS o"+
			" UNION SELECT p.price, p.id FROM product AS p"+
			" ORDER BY amount DESC, id ASC",
		f.Template())

	notProjected := a.Union(b).OrderBy(o.Col("status"), ast.Asc)
	assert.True(t, ast.IsInvalidClauseState(notProjected.Err()), "%v", notProjected.Err())

	starUnion := SelectFrom(o).Union(SelectFrom(o)).OrderBy(o.Col("id"), ast.Asc)
	assert.True(t, ast.IsInvalidClauseState(starUnion.Err()))

	locked := Select(o.Col("id")).From(o).ForUpdate().Union(Select(p.Col("id")).From(p))
	assert.True(t, ast.IsInvalidClauseState(locked.Err()))
	assert.True(t, ast.IsInvalidClauseState(a.Union(b).ForUpdate().Err()))
}

func TestSelect_DistinctAndForUpdate(t *testing.T) {
	o := orders.As("o")
	q := Select(o.Col("status")).Distinct().From(o).ForUpdate()
	assert.Equal(t, "SELECT DISTINCT o.status FROM order AS o FOR UPDATE", mustFragment(t, q).Template())
}

func TestSelect_If(t *testing.T) {
	o := orders.As("o")
	base := SelectFrom(o)
	page := func(sb SelectBuilder) SelectBuilder { return sb.Paginate(10, 20) }

	assert.Equal(t, "SELECT * FROM order AS o", mustFragment(t, base.If(false, page)).Template())
	assert.Equal(t, "SELECT * FROM order AS o LIMIT 10 OFFSET 20", mustFragment(t, base.If(true, page)).Template())
}

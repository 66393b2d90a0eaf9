package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/sqldsl/ast"
	"github.com/Konsultn-Engineering/sqldsl/dialect"
)

func TestSubquery_FromSplicesParamsDepthFirst(t *testing.T) {
	o := orders.As("o")

	inner := Select(o.Col("customer_id"), As(Sum(o.Col("total")), "spent")).
		From(o).
		Where(Eq(o.Col("status"), "paid")).
		GroupBy(o.Col("customer_id"))
	s := inner.As("s")

	q := Select(s.Col("customer_id"), s.Col("spent")).
		From(s).
		Where(Gt(s.Col("spent"), 100)).
		Limit(10)

	f := mustFragment(t, q)
	assert.Equal(t,
		"SELECT s.customer_id, s.spent FROM (SELECT o.customer_id, SUM(o.total) AS spent"+
			" FROM order AS o WHERE o.status = ? GROUP BY o.customer_id) AS s WHERE s.spent > ? LIMIT 10",
		f.Template())
	assert.Equal(t, []any{"paid", 100}, f.Params())

	sql, args, err := q.ToSQL(dialect.NewPostgresDialect())
	require.NoError(t, err)
	assert.Contains(t, sql, "o.status = $1")
	assert.Contains(t, sql, "s.spent > $2")
	assert.Equal(t, []any{"paid", 100}, args)
}

func TestSubquery_ParamsBeforeAndAfter(t *testing.T) {
	o, p := orders.As("o"), products.As("p")

	cheap := Select(p.Col("id")).From(p).Where(Lt(p.Col("price"), 5))
	q := SelectFrom(o).
		Where(Eq(o.Col("status"), "new")).
		And(InSubquery(o.Col("product_id"), cheap)).
		And(Gt(o.Col("total"), 1))

	f := mustFragment(t, q)
	assert.Equal(t,
		"SELECT * FROM order AS o WHERE ((o.status = ?) AND (o.product_id IN (SELECT p.id FROM product AS p WHERE p.price < ?))) AND (o.total > ?)",
		f.Template())
	assert.Equal(t, []any{"new", 5, 1}, f.Params())
}

func TestSubquery_JoinTarget(t *testing.T) {
	o, c := orders.As("o"), users.As("c")

	totals := Select(o.Col("customer_id"), As(Count(o.Col("id")), "n")).From(o).GroupBy(o.Col("customer_id")).As("t")
	q := Select(c.Col("name"), totals.Col("n")).
		From(c).
		LeftJoin(totals).On(c.Col("id"), totals.Col("customer_id"))

	assert.Equal(t,
		"SELECT c.name, t.n FROM customer AS c LEFT JOIN (SELECT o.customer_id, COUNT(o.id) AS n"+
			" FROM order AS o GROUP BY o.customer_id) AS t ON c.id = t.customer_id",
		mustFragment(t, q).Template())
}

func TestSubquery_UnknownOutputColumn(t *testing.T) {
	o := orders.As("o")
	s := Select(o.Col("id")).From(o).As("s")

	assert.NoError(t, s.Col("id").Err)
	assert.True(t, ast.IsInvalidArgument(s.Col("total").Err))

	// SELECT * cannot be checked
	star := SelectFrom(o).As("s")
	assert.NoError(t, star.Col("anything").Err)
}

func TestSubquery_InvalidAlias(t *testing.T) {
	o := orders.As("o")
	s := SelectFrom(o).As("not valid")
	assert.True(t, ast.IsInvalidArgument(s.Err()))

	q := SelectFrom(s)
	assert.True(t, ast.IsInvalidArgument(q.Err()))
}

func TestSubquery_CorrelatedExists(t *testing.T) {
	c, o := users.As("c"), orders.As("o")

	hasOrders := Select(ast.Lit("1")).
		From(o).
		Correlate(c).
		Where(Eq(o.Col("customer_id"), c.Col("id"))).
		And(Eq(o.Col("status"), "paid"))

	q := Select(c.Col("id")).From(c).Where(Exists(hasOrders))
	f := mustFragment(t, q)
	assert.Equal(t,
		"SELECT c.id FROM customer AS c WHERE EXISTS (SELECT 1 FROM order AS o WHERE (o.customer_id = c.id) AND (o.status = ?))",
		f.Template())
	assert.Equal(t, []any{"paid"}, f.Params())

	// the correlated alias must be bound in the outer query too
	p := products.As("p")
	wrong := SelectFrom(p).Where(NotExists(hasOrders))
	assert.True(t, ast.IsUnboundAlias(wrong.Err()))
}

func TestSubquery_UncorrelatedReferenceFails(t *testing.T) {
	c, o := users.As("c"), orders.As("o")

	sub := Select(ast.Lit("1")).From(o).Where(Eq(o.Col("customer_id"), c.Col("id")))
	assert.True(t, ast.IsUnboundAlias(sub.Err()))

	q := SelectFrom(c).Where(Exists(sub))
	assert.True(t, ast.IsUnboundAlias(q.Err()))
}

func TestSubquery_Scalar(t *testing.T) {
	c, o := users.As("c"), orders.As("o")

	spent := Select(Sum(o.Col("total"))).From(o).Correlate(c).Where(Eq(o.Col("customer_id"), c.Col("id")))
	q := Select(c.Col("name"), As(spent, "spent")).From(c)

	assert.Equal(t,
		"SELECT c.name, (SELECT SUM(o.total) FROM order AS o WHERE o.customer_id = c.id) AS spent FROM customer AS c",
		mustFragment(t, q).Template())
	assert.Equal(t, []string{"c.name", "spent"}, q.ResultNames())
}

func TestSubquery_NilOperand(t *testing.T) {
	o := orders.As("o")
	q := SelectFrom(o).Where(Exists(nil))
	assert.True(t, ast.IsInvalidClauseState(q.Err()))
}

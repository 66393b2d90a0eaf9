package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/sqldsl/ast"
)

func TestConditions(t *testing.T) {
	o, p := orders.As("o"), products.As("p")
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		cond     ast.Fragment
		template string
		params   []any
	}{
		{"eq", Eq(o.Col("id"), 1), "o.id = ?", []any{1}},
		{"ne", Ne(o.Col("status"), "void"), "o.status <> ?", []any{"void"}},
		{"gt", Gt(o.Col("total"), 1.5), "o.total > ?", []any{1.5}},
		{"lt", Lt(o.Col("total"), 2), "o.total < ?", []any{2}},
		{"gte", Gte(o.Col("total"), 3), "o.total >= ?", []any{3}},
		{"lte", Lte(o.Col("total"), 4), "o.total <= ?", []any{4}},
		{"column operand is inlined", Eq(o.Col("product_id"), p.Col("id")), "o.product_id = p.id", nil},
		{"in", In(o.Col("id"), []int{1, 2, 3}), "o.id IN (?, ?, ?)", []any{1, 2, 3}},
		{"in array", In(o.Col("id"), [2]string{"a", "b"}), "o.id IN (?, ?)", []any{"a", "b"}},
		{"in empty", In(o.Col("id"), []int{}), "1 = 0", nil},
		{"not in", NotIn(o.Col("id"), []int64{9}), "o.id NOT IN (?)", []any{int64(9)}},
		{"not in empty", NotIn(o.Col("id"), []int64{}), "1 = 1", nil},
		{"between", Between(o.Col("total"), 1, 10), "o.total BETWEEN ? AND ?", []any{1, 10}},
		{"not between", NotBetween(o.Col("total"), day, day), "o.total NOT BETWEEN ? AND ?", []any{day, day}},
		{"like", Like(p.Col("name"), "a%"), "p.name LIKE ?", []any{"a%"}},
		{"not like", NotLike(p.Col("name"), "a%"), "p.name NOT LIKE ?", []any{"a%"}},
		{"ilike", ILike(p.Col("name"), "A%"), "p.name ILIKE ?", []any{"A%"}},
		{"is null", IsNull(o.Col("status")), "o.status IS NULL", nil},
		{"is not null", IsNotNull(o.Col("status")), "o.status IS NOT NULL", nil},
		{"not", Not(Eq(o.Col("id"), 1)), "NOT (o.id = ?)", []any{1}},
		{"and one", And(Eq(o.Col("id"), 1)), "o.id = ?", []any{1}},
		{"and many", And(Eq(o.Col("id"), 1), Eq(o.Col("status"), "x")), "(o.id = ?) AND (o.status = ?)", []any{1, "x"}},
		{"or skips empty", Or(ast.Empty(), Eq(o.Col("id"), 1), ast.Empty()), "o.id = ?", []any{1}},
		{"or many", Or(Eq(o.Col("id"), 1), IsNull(o.Col("id"))), "(o.id = ?) OR (o.id IS NULL)", []any{1}},
		{"nil pointer is null param", Eq(o.Col("status"), (*string)(nil)), "o.status = ?", []any{nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, tt.cond.Err())
			assert.Equal(t, tt.template, tt.cond.Template())
			assert.Equal(t, tt.params, tt.cond.Params())
			assert.Equal(t, len(tt.params), tt.cond.NumParams())
		})
	}
}

func TestConditions_Errors(t *testing.T) {
	o := orders.As("o")

	assert.True(t, ast.IsInvalidArgument(In(o.Col("id"), "1,2").Err()))
	assert.True(t, ast.IsInvalidArgument(InWith(EmptyInError, o.Col("id"), []int{}).Err()))
	assert.True(t, ast.IsInvalidArgument(In(o.Col("id"), []byte("ab")).Err()))
	assert.True(t, ast.IsInvalidArgument(In(o.Col("id"), [2]uint8{1, 2}).Err()))
	assert.True(t, ast.IsInvalidArgument(Eq(o.Col("id"), map[string]int{}).Err()))
	assert.True(t, ast.IsInvalidArgument(Eq(o.Col("bogus"), 1).Err()))
	assert.True(t, ast.IsInvalidClauseState(Eq(nil, 1).Err()))
	assert.True(t, ast.IsInvalidArgument(And(Eq(o.Col("id"), 1), In(o.Col("id"), 3)).Err()))
}

func TestConditions_InByteValues(t *testing.T) {
	o := orders.As("o")

	f := In(o.Col("status"), [][]byte{[]byte("ab"), []byte("cd")})
	require.NoError(t, f.Err())
	assert.Equal(t, "o.status IN (?, ?)", f.Template())
	assert.Equal(t, []any{[]byte("ab"), []byte("cd")}, f.Params())
}

// =========================================================================
// Optional conditions
// =========================================================================

func TestOptions(t *testing.T) {
	o := orders.As("o")
	a := Some(Eq(o.Col("id"), 1))
	b := Some(Eq(o.Col("status"), "x"))

	tests := []struct {
		name     string
		opt      Option
		present  bool
		template string
	}{
		{"none", None(), false, ""},
		{"and all absent", AndOpt(None(), None()), false, ""},
		{"and single", AndOpt(None(), a, None()), true, "o.id = ?"},
		{"and two", AndOpt(a, b), true, "(o.id = ?) AND (o.status = ?)"},
		{"or two", OrOpt(a, None(), b), true, "(o.id = ?) OR (o.status = ?)"},
		{"nested", AndOpt(a, OrOpt(b, a)), true, "(o.id = ?) AND ((o.status = ?) OR (o.id = ?))"},
		{"when false", When(false, func() ast.Fragment { panic("not called") }), false, ""},
		{"when true", When(true, func() ast.Fragment { return IsNull(o.Col("status")) }), true, "o.status IS NULL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := tt.opt.Get()
			assert.Equal(t, tt.present, ok)
			assert.Equal(t, tt.present, tt.opt.IsPresent())
			assert.Equal(t, tt.template, f.Template())
		})
	}

	assert.Equal(t, "1 = 1", None().OrElse(ast.Lit("1 = 1")).Template())
}

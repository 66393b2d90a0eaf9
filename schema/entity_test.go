package schema

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/sqldsl/ast"
)

type Timestamps struct {
	CreatedAt string
	UpdatedAt string
}

type Order struct {
	ID        uuid.UUID `db:"column:id;generator:uuid;primary"`
	ProductID int64
	Quantity  int    `db:"qty"`
	Note      string `db:"-"`
	internal  int
	Timestamps
}

type LineItem struct {
	ID ulid.ULID `db:"column:id;gen:ulid"`
}

func (LineItem) TableName() string { return "order_line" }

// =========================================================================
// Entity Tests
// =========================================================================

func TestNewEntity_ColumnLookup(t *testing.T) {
	e := NewEntity("order", "id", "product_id")

	col, ok := e.Column("productId")
	require.True(t, ok)
	assert.Equal(t, "product_id", col.Name)

	_, ok = e.Column("price")
	assert.False(t, ok)

	assert.Panics(t, func() { NewEntity("order", "id", "id") })
	assert.Panics(t, func() { NewEntity("bad name", "id") })
}

func TestEntity_CopiesOnChange(t *testing.T) {
	base := NewEntity("order", "id")
	scoped := base.InSchema("sales").WithGenerator("id", UUIDGenerator{})

	assert.Equal(t, "", base.Schema())
	assert.Equal(t, "sales", scoped.Schema())

	col, _ := base.Column("id")
	assert.Nil(t, col.Generator)
	col, _ = scoped.Column("id")
	assert.NotNil(t, col.Generator)
}

func TestEntityOf_Struct(t *testing.T) {
	e, err := EntityOf[Order]()
	require.NoError(t, err)

	assert.Equal(t, "orders", e.Table())

	var names []string
	for _, c := range e.Columns() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"id", "product_id", "qty", "created_at", "updated_at"}, names)

	id, ok := e.Column("ID")
	require.True(t, ok)
	assert.True(t, id.Primary)
	require.NotNil(t, id.Generator)
	assert.Equal(t, "uuid", id.Generator.Type())

	// field name lookup
	qty, ok := e.Column("Quantity")
	require.True(t, ok)
	assert.Equal(t, "qty", qty.Name)
}

func TestEntityOf_TableNamerAndCache(t *testing.T) {
	ctx := New(WithCacheSize(8))

	e1, err := ctx.EntityOf(reflect.TypeOf(&LineItem{}))
	require.NoError(t, err)
	e2, err := ctx.EntityOf(reflect.TypeOf(LineItem{}))
	require.NoError(t, err)

	assert.Same(t, e1, e2)
	assert.Equal(t, 1, ctx.Len())
	assert.Equal(t, "order_line", e1.Table())

	col, _ := e1.Column("id")
	require.NotNil(t, col.Generator)
	assert.Equal(t, "ulid", col.Generator.Type())
}

func TestEntityOf_Errors(t *testing.T) {
	ctx := New()

	_, err := ctx.EntityOf(reflect.TypeOf(42))
	assert.Error(t, err)

	type Bad struct {
		ID string `db:"id;generator:snowflake"`
	}
	_, err = ctx.EntityOf(reflect.TypeOf(Bad{}))
	assert.ErrorContains(t, err, "unknown generator")
}

func TestEntity_Generated(t *testing.T) {
	e := NewEntity("order", "id", "ref", "product_id").
		WithGenerator("id", UUIDGenerator{}).
		WithGenerator("ref", NewULIDGenerator())

	names, values, err := e.Generated(func(c string) bool { return c == "ref" })
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, names)
	require.Len(t, values, 1)
	assert.IsType(t, uuid.UUID{}, values[0])
}

// =========================================================================
// Alias Binding Tests
// =========================================================================

func TestAliasBinding(t *testing.T) {
	o := NewEntity("order", "id", "product_id").As("o")

	assert.Equal(t, "order AS o", o.Table().Fragment().Template())
	assert.Equal(t, "o.product_id", o.Col("productId").ToFragment().Template())
	assert.Equal(t, []ast.Ref{{Alias: "o", Source: "order"}}, o.Col("id").ToFragment().Refs())
	assert.Equal(t, ast.SourceRef(o.Source()), ast.Ref{Alias: "o", Source: "order"})

	var results []string
	for _, c := range o.Results() {
		results = append(results, c.ResultName())
	}
	assert.Equal(t, []string{"o_id", "o_product_id"}, results)
}

func TestAliasBinding_Unaliased(t *testing.T) {
	b := NewEntity("order", "id").Bind()

	assert.Equal(t, "order", b.Table().Fragment().Template())
	assert.Equal(t, "order.id", b.Col("id").ToFragment().Template())
	assert.Equal(t, ast.SourceRef(b.Source()), b.Col("id").ToFragment().Refs()[0])
}

func TestAliasBinding_Errors(t *testing.T) {
	o := NewEntity("order", "id").As("o")

	err := o.Col("price").ToFragment().Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ast.ErrInvalidArgument))
	assert.Contains(t, err.Error(), `no column "price"`)

	bad := NewEntity("order", "id").As("o x")
	assert.True(t, ast.IsInvalidArgument(bad.Err()))
	assert.Error(t, bad.Col("id").ToFragment().Err())
}

// =========================================================================
// Generator Tests
// =========================================================================

func TestGeneratorRegistry(t *testing.T) {
	r := NewGeneratorRegistry()

	gen, ok := r.Get("ulid")
	require.True(t, ok)

	a, err := gen.Generate()
	require.NoError(t, err)
	b, err := gen.Generate()
	require.NoError(t, err)
	assert.Less(t, a.(ulid.ULID).Compare(b.(ulid.ULID)), 0)

	_, ok = r.Get("nanoid")
	assert.False(t, ok)
}

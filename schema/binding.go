package schema

import (
	"github.com/Konsultn-Engineering/sqldsl/ast"
)

// AliasBinding is an entity bound to the short name generated SQL uses for
// it. It renders as `table AS alias` and hands out alias.column refs.
type AliasBinding struct {
	entity *Entity
	alias  string
	table  *ast.Table
	err    error
}

func newAliasBinding(e *Entity, alias string) *AliasBinding {
	b := &AliasBinding{
		entity: e,
		alias:  alias,
		table:  ast.NewTable(e.schema, e.table, alias),
	}
	if alias != "" && !ast.IsIdent(alias) {
		b.err = ast.Errorf(ast.ErrCodeInvalidArgument, "binding alias", "invalid alias %q for %q", alias, e.table)
	}
	return b
}

func (b *AliasBinding) Entity() *Entity { return b.entity }

// Alias is the qualifier column refs use: the alias, or the table name for
// an unaliased binding.
func (b *AliasBinding) Alias() string {
	if b.alias == "" {
		return b.entity.table
	}
	return b.alias
}

func (b *AliasBinding) Table() *ast.Table { return b.table }

func (b *AliasBinding) Source() ast.Source { return b.table }

// Err reports an invalid alias.
func (b *AliasBinding) Err() error { return b.err }

// Col resolves a column of the entity. Unknown columns yield a ref that
// carries an error instead of panicking, and the error surfaces at the
// builder call that uses it.
func (b *AliasBinding) Col(name string) ast.ColumnRef {
	if b.err != nil {
		return ast.ColumnRef{Name: name, Err: b.err}
	}
	col, ok := b.entity.Column(name)
	if !ok {
		return ast.ColumnRef{
			Qualifier: b.Alias(),
			Source:    b.entity.table,
			Name:      name,
			Err: ast.Errorf(ast.ErrCodeInvalidArgument, "resolving column",
				"table %q (alias %q) has no column %q", b.entity.table, b.Alias(), name),
		}
	}
	return ast.NewColumnRef(b.Alias(), b.entity.table, col.Name)
}

// All lists every column of the entity in declaration order.
func (b *AliasBinding) All() []ast.ColumnRef {
	refs := make([]ast.ColumnRef, len(b.entity.columns))
	for i, c := range b.entity.columns {
		refs[i] = b.Col(c.Name)
	}
	return refs
}

// Results is All with every column aliased alias_column so rows from
// several bindings map without name clashes.
func (b *AliasBinding) Results() []ast.ColumnRef {
	refs := b.All()
	for i := range refs {
		refs[i] = refs[i].Result()
	}
	return refs
}

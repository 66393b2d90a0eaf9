package schema

import (
	"fmt"
	"slices"

	"github.com/Konsultn-Engineering/sqldsl/ast"
)

// Column is one column of an entity.
type Column struct {
	Name      string
	Field     string // Go field name for struct derived entities
	Index     []int  // field index path for struct derived entities
	Primary   bool
	Generator IDGenerator
}

// Entity is a table and its known columns. Entities are immutable; the
// With* methods return modified copies.
type Entity struct {
	schema  string
	table   string
	columns []Column
	byName  map[string]int
}

// NewEntity declares a table with the given column names. It panics on names
// that are not plain identifiers since entities are declared statically.
func NewEntity(table string, columns ...string) *Entity {
	cols := make([]Column, len(columns))
	for i, name := range columns {
		cols[i] = Column{Name: name}
	}
	e, err := newEntity("", table, cols)
	if err != nil {
		panic(err)
	}
	return e
}

func newEntity(schemaName, table string, columns []Column) (*Entity, error) {
	if !ast.IsIdent(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if schemaName != "" && !ast.IsIdent(schemaName) {
		return nil, fmt.Errorf("invalid schema name %q", schemaName)
	}

	e := &Entity{
		schema:  schemaName,
		table:   table,
		columns: columns,
		byName:  make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if !ast.IsIdent(c.Name) {
			return nil, fmt.Errorf("invalid column name %q", c.Name)
		}
		if _, dup := e.byName[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		e.byName[c.Name] = i
	}
	return e, nil
}

func (e *Entity) clone() *Entity {
	c := *e
	c.columns = slices.Clone(e.columns)
	return &c
}

// InSchema returns a copy of e qualified by a database schema.
func (e *Entity) InSchema(name string) *Entity {
	if !ast.IsIdent(name) {
		panic(fmt.Sprintf("schema: invalid schema name %q", name))
	}
	c := e.clone()
	c.schema = name
	return c
}

// WithGenerator returns a copy of e whose column fills itself from gen when
// an insert leaves it out.
func (e *Entity) WithGenerator(column string, gen IDGenerator) *Entity {
	i, ok := e.lookup(column)
	if !ok {
		panic(fmt.Sprintf("schema: table %q has no column %q", e.table, column))
	}
	c := e.clone()
	c.columns[i].Generator = gen
	return c
}

func (e *Entity) Schema() string { return e.schema }
func (e *Entity) Table() string  { return e.table }

// Columns returns a copy of the entity's columns in declaration order.
func (e *Entity) Columns() []Column {
	return slices.Clone(e.columns)
}

// Column finds a column by its SQL name, its Go field name or the snake_case
// form of either.
func (e *Entity) Column(name string) (Column, bool) {
	i, ok := e.lookup(name)
	if !ok {
		return Column{}, false
	}
	return e.columns[i], true
}

func (e *Entity) lookup(name string) (int, bool) {
	if i, ok := e.byName[name]; ok {
		return i, true
	}
	if i, ok := e.byName[toSnakeCase(name)]; ok {
		return i, true
	}
	for i, c := range e.columns {
		if c.Field != "" && c.Field == name {
			return i, true
		}
	}
	return 0, false
}

// As binds the entity to an alias.
func (e *Entity) As(alias string) *AliasBinding {
	return newAliasBinding(e, alias)
}

// Bind uses the table name itself as the qualifier, so columns render as
// table.column and the table renders without AS.
func (e *Entity) Bind() *AliasBinding {
	return newAliasBinding(e, "")
}

// Generated produces values for every generator column the caller did not
// assign, in column order.
func (e *Entity) Generated(assigned func(column string) bool) ([]string, []any, error) {
	var (
		names  []string
		values []any
	)
	for _, c := range e.columns {
		if c.Generator == nil || assigned(c.Name) {
			continue
		}
		v, err := c.Generator.Generate()
		if err != nil {
			return nil, nil, fmt.Errorf("generating %s.%s: %w", e.table, c.Name, err)
		}
		names = append(names, c.Name)
		values = append(values, v)
	}
	return names, values, nil
}

package query

import (
	"slices"

	"github.com/Konsultn-Engineering/sqldsl/ast"
	"github.com/Konsultn-Engineering/sqldsl/dialect"
	"github.com/Konsultn-Engineering/sqldsl/schema"
)

// Assignment pairs a column with the value it receives. Expression values
// are inlined, everything else is bound.
type Assignment struct {
	Column ast.ColumnRef
	Value  any
}

func Assign(col ast.ColumnRef, value any) Assignment {
	return Assignment{Column: col, Value: value}
}

// InsertBuilder is an immutable INSERT with the same sticky error rules as
// SelectBuilder.
type InsertBuilder struct {
	stmt   *ast.InsertStmt
	entity *schema.Entity
	err    error
}

// InsertInto starts an INSERT into the table of target. The alias of the
// binding is only used to check column ownership; INSERT never renders it.
func InsertInto(target *schema.AliasBinding) InsertBuilder {
	if target == nil {
		return InsertBuilder{err: ast.Errorf(ast.ErrCodeInvalidClauseState, "building insert", "nil target")}
	}
	return InsertBuilder{
		stmt:   &ast.InsertStmt{Table: target.Table()},
		entity: target.Entity(),
		err:    target.Err(),
	}
}

func (ib InsertBuilder) with(fn func(stmt *ast.InsertStmt) error) InsertBuilder {
	if ib.err != nil {
		return ib
	}
	if ib.stmt == nil {
		ib.err = ast.Errorf(ast.ErrCodeInvalidClauseState, "building insert", "no target table")
		return ib
	}
	stmt := ib.stmt.Clone()
	if err := fn(stmt); err != nil {
		ib.err = err
		return ib
	}
	return InsertBuilder{stmt: stmt, entity: ib.entity}
}

func (ib InsertBuilder) If(ok bool, fn func(InsertBuilder) InsertBuilder) InsertBuilder {
	if !ok || ib.err != nil {
		return ib
	}
	return fn(ib)
}

// Columns sets the column list. It can only be set once.
func (ib InsertBuilder) Columns(cols ...ast.ColumnRef) InsertBuilder {
	const while = "building insert columns"

	return ib.with(func(stmt *ast.InsertStmt) error {
		if len(stmt.Columns) > 0 {
			return ast.Errorf(ast.ErrCodeInvalidClauseState, while, "columns already set")
		}
		for _, c := range cols {
			if err := ownColumn(while, stmt.Table, c); err != nil {
				return err
			}
		}
		stmt.Columns = append(stmt.Columns, cols...)
		return nil
	})
}

// Values adds one row. The row must match the column list in length.
func (ib InsertBuilder) Values(row ...any) InsertBuilder {
	const while = "building insert values"

	return ib.with(func(stmt *ast.InsertStmt) error {
		if stmt.Select != nil {
			return ast.Errorf(ast.ErrCodeInvalidClauseState, while, "insert already has a SELECT source")
		}
		if len(stmt.Columns) == 0 {
			return ast.Errorf(ast.ErrCodeInvalidClauseState, while, "VALUES without a column list")
		}
		if len(row) != len(stmt.Columns) {
			return ast.Errorf(ast.ErrCodeInvalidClauseState, while,
				"%d values for %d columns", len(row), len(stmt.Columns))
		}
		return addRow(while, stmt, row)
	})
}

// NamedValues adds one row from column assignments. Entity columns with an
// ID generator that the row leaves out are generated, limited to the column
// list when one is already fixed. The first row fixes the column list when
// none was set; later rows must assign the same columns.
func (ib InsertBuilder) NamedValues(assignments ...Assignment) InsertBuilder {
	const while = "building insert values"

	return ib.with(func(stmt *ast.InsertStmt) error {
		if stmt.Select != nil {
			return ast.Errorf(ast.ErrCodeInvalidClauseState, while, "insert already has a SELECT source")
		}

		byName := make(map[string]any, len(assignments))
		order := make([]ast.ColumnRef, 0, len(assignments))
		for _, a := range assignments {
			if err := ownColumn(while, stmt.Table, a.Column); err != nil {
				return err
			}
			if _, dup := byName[a.Column.Name]; dup {
				return ast.Errorf(ast.ErrCodeInvalidClauseState, while, "column %q assigned twice", a.Column.Name)
			}
			byName[a.Column.Name] = a.Value
			order = append(order, a.Column)
		}

		if ib.entity != nil {
			fixed := len(stmt.Columns) > 0
			names, values, err := ib.entity.Generated(func(c string) bool {
				if _, ok := byName[c]; ok {
					return true
				}
				// A fixed column list leaves out generator columns it does not name.
				return fixed && !slices.ContainsFunc(stmt.Columns, func(col ast.ColumnRef) bool { return col.Name == c })
			})
			if err != nil {
				return ast.NewErr(ast.ErrCodeInvalidArgument, while, err)
			}
			ref := ast.SourceRef(stmt.Table)
			for i, name := range names {
				byName[name] = values[i]
				order = append(order, ast.NewColumnRef(ref.Alias, ref.Source, name))
			}
		}

		if len(stmt.Columns) == 0 {
			stmt.Columns = order
		}
		if len(byName) != len(stmt.Columns) {
			return ast.Errorf(ast.ErrCodeInvalidClauseState, while,
				"%d values for %d columns", len(byName), len(stmt.Columns))
		}

		row := make([]any, len(stmt.Columns))
		for i, c := range stmt.Columns {
			v, ok := byName[c.Name]
			if !ok {
				return ast.Errorf(ast.ErrCodeInvalidClauseState, while, "no value for column %q", c.Name)
			}
			row[i] = v
		}
		return addRow(while, stmt, row)
	})
}

func addRow(while string, stmt *ast.InsertStmt, row []any) error {
	frags := make([]ast.Fragment, len(row))
	for i, v := range row {
		frags[i] = operand(v)
		if err := frags[i].Err(); err != nil {
			return err
		}
		if len(frags[i].Refs()) > 0 {
			return ast.Errorf(ast.ErrCodeUnboundAlias, while, "column references are not allowed in VALUES")
		}
	}
	stmt.Rows = append(stmt.Rows, frags)
	return nil
}

// Select makes this an INSERT ... SELECT.
func (ib InsertBuilder) Select(sub SelectBuilder) InsertBuilder {
	const while = "building insert select"

	return ib.with(func(stmt *ast.InsertStmt) error {
		if err := sub.Err(); err != nil {
			return err
		}
		if len(stmt.Rows) > 0 {
			return ast.Errorf(ast.ErrCodeInvalidClauseState, while, "insert already has VALUES")
		}
		if stmt.Select != nil {
			return ast.Errorf(ast.ErrCodeInvalidClauseState, while, "insert already has a SELECT source")
		}
		if a, b := len(stmt.Columns), len(sub.stmt.Columns); a > 0 && b > 0 && a != b {
			return ast.Errorf(ast.ErrCodeInvalidClauseState, while, "%d columns but select yields %d", a, b)
		}
		stmt.Select = sub.stmt
		return nil
	})
}

func (ib InsertBuilder) Returning(cols ...ast.ColumnRef) InsertBuilder {
	return ib.with(func(stmt *ast.InsertStmt) error {
		for _, c := range cols {
			if err := ownColumn("building returning", stmt.Table, c); err != nil {
				return err
			}
		}
		stmt.Returning = append(stmt.Returning, cols...)
		return nil
	})
}

func (ib InsertBuilder) Err() error { return ib.err }

func (ib InsertBuilder) Node() ast.Node {
	if ib.stmt == nil {
		return nil
	}
	return ib.stmt
}

func (ib InsertBuilder) Stmt() *ast.InsertStmt {
	if ib.stmt == nil {
		return nil
	}
	return ib.stmt.Clone()
}

func (ib InsertBuilder) Fragment() (ast.Fragment, error) {
	return render(ib.err, ib.Node())
}

func (ib InsertBuilder) ToSQL(d dialect.Dialect) (string, []any, error) {
	return toSQL(ib.err, ib.Node(), d)
}

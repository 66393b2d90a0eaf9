package query

import (
	"github.com/Konsultn-Engineering/sqldsl/ast"
	"github.com/Konsultn-Engineering/sqldsl/dialect"
	"github.com/Konsultn-Engineering/sqldsl/schema"
)

// UpdateBuilder is an immutable UPDATE with the same sticky error rules as
// SelectBuilder.
type UpdateBuilder struct {
	stmt *ast.UpdateStmt
	err  error
}

func Update(target *schema.AliasBinding) UpdateBuilder {
	if target == nil {
		return UpdateBuilder{err: ast.Errorf(ast.ErrCodeInvalidClauseState, "building update", "nil target")}
	}
	return UpdateBuilder{stmt: &ast.UpdateStmt{Table: target.Table()}, err: target.Err()}
}

func (ub UpdateBuilder) with(fn func(stmt *ast.UpdateStmt) error) UpdateBuilder {
	if ub.err != nil {
		return ub
	}
	if ub.stmt == nil {
		ub.err = ast.Errorf(ast.ErrCodeInvalidClauseState, "building update", "no target table")
		return ub
	}
	stmt := ub.stmt.Clone()
	if err := fn(stmt); err != nil {
		ub.err = err
		return ub
	}
	return UpdateBuilder{stmt: stmt}
}

func (ub UpdateBuilder) scope() []ast.Ref {
	return []ast.Ref{ast.SourceRef(ub.stmt.Table)}
}

func (ub UpdateBuilder) If(ok bool, fn func(UpdateBuilder) UpdateBuilder) UpdateBuilder {
	if !ok || ub.err != nil {
		return ub
	}
	return fn(ub)
}

// Set assigns value to col. Expression values, such as another column or
// an arithmetic fragment, are inlined and may reference the target table.
func (ub UpdateBuilder) Set(col ast.ColumnRef, value any) UpdateBuilder {
	return ub.SetFragment(col, operand(value))
}

// SetFragment assigns a prebuilt fragment to col.
func (ub UpdateBuilder) SetFragment(col ast.ColumnRef, value ast.Fragment) UpdateBuilder {
	const while = "building update set"

	return ub.with(func(stmt *ast.UpdateStmt) error {
		if err := ownColumn(while, stmt.Table, col); err != nil {
			return err
		}
		if err := ast.CheckRefs(while, ub.scope(), value); err != nil {
			return err
		}
		stmt.Set = append(stmt.Set, ast.Assignment{Column: col, Value: value})
		return nil
	})
}

// SetAll applies assignments in order.
func (ub UpdateBuilder) SetAll(assignments ...Assignment) UpdateBuilder {
	for _, a := range assignments {
		ub = ub.Set(a.Column, a.Value)
	}
	return ub
}

func (ub UpdateBuilder) Where(cond ast.Expression) UpdateBuilder {
	return ub.where(ast.OpAnd, cond)
}

func (ub UpdateBuilder) And(cond ast.Expression) UpdateBuilder {
	return ub.where(ast.OpAnd, cond)
}

func (ub UpdateBuilder) Or(cond ast.Expression) UpdateBuilder {
	return ub.where(ast.OpOr, cond)
}

func (ub UpdateBuilder) WhereOpt(opt Option) UpdateBuilder {
	cond, ok := opt.Get()
	if !ok {
		return ub
	}
	return ub.where(ast.OpAnd, cond)
}

func (ub UpdateBuilder) where(op ast.Operator, cond ast.Expression) UpdateBuilder {
	return ub.with(func(stmt *ast.UpdateStmt) error {
		f, err := condition("building where", ub.scope(), cond)
		if err != nil {
			return err
		}
		stmt.Where = conjoin(op, stmt.Where, f)
		return nil
	})
}

func (ub UpdateBuilder) Returning(cols ...ast.ColumnRef) UpdateBuilder {
	return ub.with(func(stmt *ast.UpdateStmt) error {
		for _, c := range cols {
			if err := ownColumn("building returning", stmt.Table, c); err != nil {
				return err
			}
		}
		stmt.Returning = append(stmt.Returning, cols...)
		return nil
	})
}

func (ub UpdateBuilder) Err() error { return ub.err }

func (ub UpdateBuilder) Node() ast.Node {
	if ub.stmt == nil {
		return nil
	}
	return ub.stmt
}

func (ub UpdateBuilder) Stmt() *ast.UpdateStmt {
	if ub.stmt == nil {
		return nil
	}
	return ub.stmt.Clone()
}

func (ub UpdateBuilder) Fragment() (ast.Fragment, error) {
	return render(ub.err, ub.Node())
}

func (ub UpdateBuilder) ToSQL(d dialect.Dialect) (string, []any, error) {
	return toSQL(ub.err, ub.Node(), d)
}

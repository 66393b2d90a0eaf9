package query

import (
	"github.com/Konsultn-Engineering/sqldsl/ast"
	"github.com/Konsultn-Engineering/sqldsl/dialect"
	"github.com/Konsultn-Engineering/sqldsl/schema"
)

// DeleteBuilder is an immutable DELETE. Without a Where it deletes every
// row, exactly as the SQL would.
type DeleteBuilder struct {
	stmt *ast.DeleteStmt
	err  error
}

func DeleteFrom(target *schema.AliasBinding) DeleteBuilder {
	if target == nil {
		return DeleteBuilder{err: ast.Errorf(ast.ErrCodeInvalidClauseState, "building delete", "nil target")}
	}
	return DeleteBuilder{stmt: &ast.DeleteStmt{Table: target.Table()}, err: target.Err()}
}

func (db DeleteBuilder) with(fn func(stmt *ast.DeleteStmt) error) DeleteBuilder {
	if db.err != nil {
		return db
	}
	if db.stmt == nil {
		db.err = ast.Errorf(ast.ErrCodeInvalidClauseState, "building delete", "no target table")
		return db
	}
	stmt := db.stmt.Clone()
	if err := fn(stmt); err != nil {
		db.err = err
		return db
	}
	return DeleteBuilder{stmt: stmt}
}

func (db DeleteBuilder) If(ok bool, fn func(DeleteBuilder) DeleteBuilder) DeleteBuilder {
	if !ok || db.err != nil {
		return db
	}
	return fn(db)
}

func (db DeleteBuilder) Where(cond ast.Expression) DeleteBuilder {
	return db.where(ast.OpAnd, cond)
}

func (db DeleteBuilder) And(cond ast.Expression) DeleteBuilder {
	return db.where(ast.OpAnd, cond)
}

func (db DeleteBuilder) Or(cond ast.Expression) DeleteBuilder {
	return db.where(ast.OpOr, cond)
}

func (db DeleteBuilder) WhereOpt(opt Option) DeleteBuilder {
	cond, ok := opt.Get()
	if !ok {
		return db
	}
	return db.where(ast.OpAnd, cond)
}

func (db DeleteBuilder) where(op ast.Operator, cond ast.Expression) DeleteBuilder {
	return db.with(func(stmt *ast.DeleteStmt) error {
		scope := []ast.Ref{ast.SourceRef(stmt.Table)}
		f, err := condition("building where", scope, cond)
		if err != nil {
			return err
		}
		stmt.Where = conjoin(op, stmt.Where, f)
		return nil
	})
}

func (db DeleteBuilder) Returning(cols ...ast.ColumnRef) DeleteBuilder {
	return db.with(func(stmt *ast.DeleteStmt) error {
		for _, c := range cols {
			if err := ownColumn("building returning", stmt.Table, c); err != nil {
				return err
			}
		}
		stmt.Returning = append(stmt.Returning, cols...)
		return nil
	})
}

func (db DeleteBuilder) Err() error { return db.err }

func (db DeleteBuilder) Node() ast.Node {
	if db.stmt == nil {
		return nil
	}
	return db.stmt
}

func (db DeleteBuilder) Stmt() *ast.DeleteStmt {
	if db.stmt == nil {
		return nil
	}
	return db.stmt.Clone()
}

func (db DeleteBuilder) Fragment() (ast.Fragment, error) {
	return render(db.err, db.Node())
}

func (db DeleteBuilder) ToSQL(d dialect.Dialect) (string, []any, error) {
	return toSQL(db.err, db.Node(), d)
}

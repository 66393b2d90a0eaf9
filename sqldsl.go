// Package sqldsl builds SQL from typed fragments and runs it against
// PostgreSQL through pgx or database/sql.
//
//	db, err := sqldsl.OpenFile(ctx, "sqldsl.yaml")
//	o := sqldsl.MustTable[Order](db, "o")
//	rows, err := db.Query(ctx, query.Select(o.Col("id")).From(o).Where(query.Eq(o.Col("product_id"), 123)))
package sqldsl

import (
	"context"
	"reflect"

	"github.com/Konsultn-Engineering/sqldsl/ast"
	"github.com/Konsultn-Engineering/sqldsl/config"
	"github.com/Konsultn-Engineering/sqldsl/engine"
	"github.com/Konsultn-Engineering/sqldsl/schema"
)

var (
	ErrMalformedFragment  = ast.ErrMalformedFragment
	ErrUnboundAlias       = ast.ErrUnboundAlias
	ErrInvalidClauseState = ast.ErrInvalidClauseState
	ErrInvalidArgument    = ast.ErrInvalidArgument
)

// DB pairs an engine with the schema context used to describe tables.
type DB struct {
	*engine.Engine
	schema *schema.Context
}

// Open connects using cfg. Entities are resolved with the default naming
// strategy unless opts say otherwise.
func Open(ctx context.Context, cfg *config.Config, opts ...schema.Option) (*DB, error) {
	e, err := engine.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &DB{Engine: e, schema: schema.New(opts...)}, nil
}

// OpenFile loads the configuration at path (overridable with SQLDSL_*
// environment variables) and connects.
func OpenFile(ctx context.Context, path string, opts ...schema.Option) (*DB, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return Open(ctx, cfg, opts...)
}

func (db *DB) Schema() *schema.Context { return db.schema }

// Table describes T and binds it to alias.
func Table[T any](db *DB, alias string) (*schema.AliasBinding, error) {
	ent, err := db.schema.EntityOf(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	b := ent.As(alias)
	if err := b.Err(); err != nil {
		return nil, err
	}
	return b, nil
}

func MustTable[T any](db *DB, alias string) *schema.AliasBinding {
	b, err := Table[T](db, alias)
	if err != nil {
		panic(err)
	}
	return b
}

package engine

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/Konsultn-Engineering/sqldsl/ast"
	"github.com/Konsultn-Engineering/sqldsl/database"
	"github.com/Konsultn-Engineering/sqldsl/visitor"
)

// Statement is anything the query builders produce.
type Statement interface {
	Node() ast.Node
	Err() error
}

// Engine is the terminal step: it renders a statement once, hands the SQL
// and its arguments to the database exactly once and returns whatever the
// driver returns. Driver errors are passed through unwrapped so callers can
// inspect them with errors.As.
type Engine struct {
	db       database.Database
	renderer *visitor.Renderer
	log      zerolog.Logger
	closers  []io.Closer
}

type Option func(*Engine)

func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

func New(db database.Database, renderer *visitor.Renderer, opts ...Option) *Engine {
	if renderer == nil {
		renderer = visitor.NewRenderer(nil)
	}
	e := &Engine{
		db:       db,
		renderer: renderer,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) DB() database.Database { return e.db }

func (e *Engine) Renderer() *visitor.Renderer { return e.renderer }

// Render returns the dialect SQL and arguments of stmt without executing it.
func (e *Engine) Render(stmt Statement) (string, []any, error) {
	f, err := e.fragment(stmt)
	if err != nil {
		return "", nil, err
	}
	return e.renderer.Finalize(f)
}

func (e *Engine) fragment(stmt Statement) (ast.Fragment, error) {
	if stmt == nil {
		return ast.Fragment{}, ast.Errorf(ast.ErrCodeInvalidClauseState, "rendering", "nil statement")
	}
	if err := stmt.Err(); err != nil {
		return ast.Fragment{}, err
	}
	return visitor.Render(stmt.Node())
}

// Query runs a row returning statement. The caller closes the rows.
func (e *Engine) Query(ctx context.Context, stmt Statement) (database.Rows, error) {
	f, err := e.fragment(stmt)
	if err != nil {
		return nil, err
	}
	return e.QueryFragment(ctx, f)
}

// Exec runs a statement that returns no rows.
func (e *Engine) Exec(ctx context.Context, stmt Statement) (database.Result, error) {
	f, err := e.fragment(stmt)
	if err != nil {
		return nil, err
	}
	return e.ExecFragment(ctx, f)
}

// QueryFragment runs a hand built fragment, typically from ast.Raw.
func (e *Engine) QueryFragment(ctx context.Context, f ast.Fragment) (database.Rows, error) {
	sql, args, err := e.renderer.Finalize(f)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := e.db.QueryContext(ctx, sql, args...)
	e.logExec("query", sql, f, start, err)
	return rows, err
}

// ExecFragment is QueryFragment for statements without rows.
func (e *Engine) ExecFragment(ctx context.Context, f ast.Fragment) (database.Result, error) {
	sql, args, err := e.renderer.Finalize(f)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := e.db.ExecContext(ctx, sql, args...)
	e.logExec("exec", sql, f, start, err)
	return res, err
}

func (e *Engine) logExec(kind, sql string, f ast.Fragment, start time.Time, err error) {
	ev := e.log.Debug()
	if err != nil {
		ev = e.log.Warn().Err(err)
	}
	if ev == nil {
		return
	}
	ev = ev.Str("kind", kind).
		Str("sql", sql).
		Int("params", f.NumParams()).
		Dur("duration", time.Since(start))
	if e.log.GetLevel() <= zerolog.TraceLevel {
		ev = ev.Str("interpolated", e.renderer.Interpolate(f))
	}
	ev.Msg("statement executed")
}

func (e *Engine) Ping(ctx context.Context) error {
	return e.db.PingContext(ctx)
}

// Close closes the database and anything else the engine owns.
func (e *Engine) Close() error {
	errs := []error{e.db.Close()}
	for _, c := range e.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

package connector

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"github.com/Konsultn-Engineering/sqldsl/database"
	"github.com/Konsultn-Engineering/sqldsl/dialect"
)

// Connection is an open database together with the dialect its SQL must be
// rendered for.
type Connection struct {
	db      database.Database
	dialect dialect.Dialect
	stats   func() ConnectionStats
}

func (c *Connection) Database() database.Database { return c.db }

func (c *Connection) Dialect() dialect.Dialect { return c.dialect }

// Health checks the connection health.
func (c *Connection) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Stats returns connection pool statistics.
func (c *Connection) Stats() ConnectionStats {
	return c.stats()
}

func (c *Connection) Close() error {
	return c.db.Close()
}

// Open validates cfg, opens the configured driver and pings it, retrying the
// whole attempt per cfg.Retry.
func Open(ctx context.Context, cfg Config) (*Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid connection config: %w", err)
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	conn, err := retryConnect(ctx, cfg.Retry, func(ctx context.Context) (*Connection, error) {
		conn, err := open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := conn.Health(ctx); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return conn, nil
}

func open(ctx context.Context, cfg Config) (*Connection, error) {
	switch cfg.Driver {
	case DriverPgx:
		pool, err := OpenPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Connection{
			db:      database.NewPgxDatabase(pool),
			dialect: dialect.NewPostgresDialect(),
			stats:   poolStats(pool),
		}, nil

	case DriverPgxStdlib, DriverPq:
		db, err := OpenDB(cfg)
		if err != nil {
			return nil, err
		}
		var opts []database.SqlOption
		if cfg.StatementCache > 0 {
			opts = append(opts, database.WithStatementCache(cfg.StatementCache))
		}
		return &Connection{
			db:      database.NewSqlDatabase(db, opts...),
			dialect: dialect.NewPostgresDialect(),
			stats:   dbStats(db),
		}, nil
	}
	return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
}

// OpenPool creates a pgx pool. The pool connects lazily.
func OpenPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, err
	}

	if cfg.Pool.MaxOpen > 0 {
		poolCfg.MaxConns = int32(cfg.Pool.MaxOpen)
	}
	poolCfg.MinConns = int32(cfg.Pool.MaxIdle)
	if cfg.Pool.MaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.Pool.MaxLifetime
	}
	if cfg.Pool.MaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.Pool.MaxIdleTime
	}

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// OpenDB opens a database/sql handle through lib/pq or the pgx stdlib
// adapter, depending on cfg.Driver.
func OpenDB(cfg Config) (*sql.DB, error) {
	var db *sql.DB
	switch cfg.Driver {
	case DriverPq:
		connector, err := pq.NewConnector(cfg.DSN())
		if err != nil {
			return nil, err
		}
		db = sql.OpenDB(connector)
	case DriverPgxStdlib:
		connCfg, err := pgx.ParseConfig(cfg.DSN())
		if err != nil {
			return nil, err
		}
		db = stdlib.OpenDB(*connCfg)
	default:
		return nil, fmt.Errorf("driver %q has no database/sql adapter", cfg.Driver)
	}

	db.SetMaxOpenConns(cfg.Pool.MaxOpen)
	db.SetMaxIdleConns(cfg.Pool.MaxIdle)
	db.SetConnMaxLifetime(cfg.Pool.MaxLifetime)
	db.SetConnMaxIdleTime(cfg.Pool.MaxIdleTime)
	return db, nil
}

func poolStats(pool *pgxpool.Pool) func() ConnectionStats {
	return func() ConnectionStats {
		s := pool.Stat()
		return ConnectionStats{
			OpenConnections: int(s.TotalConns()),
			InUse:           int(s.AcquiredConns()),
			Idle:            int(s.IdleConns()),
		}
	}
}

func dbStats(db *sql.DB) func() ConnectionStats {
	return func() ConnectionStats {
		s := db.Stats()
		return ConnectionStats{
			OpenConnections: s.OpenConnections,
			InUse:           s.InUse,
			Idle:            s.Idle,
		}
	}
}

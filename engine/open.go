package engine

import (
	"context"
	"fmt"

	"github.com/Konsultn-Engineering/sqldsl/cache"
	"github.com/Konsultn-Engineering/sqldsl/config"
	"github.com/Konsultn-Engineering/sqldsl/connector"
	"github.com/Konsultn-Engineering/sqldsl/dialect"
	"github.com/Konsultn-Engineering/sqldsl/logger"
	"github.com/Konsultn-Engineering/sqldsl/visitor"
)

// NewRenderer builds the renderer described by cfg: dialect, quoting policy
// and render cache.
func NewRenderer(cfg *config.Config) (*visitor.Renderer, error) {
	d, err := dialect.ByName(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	quote, err := visitor.ParseQuotePolicy(cfg.Quote)
	if err != nil {
		return nil, err
	}

	opts := []visitor.Option{visitor.WithQuotePolicy(quote)}
	if cfg.Cache.Size > 0 {
		opts = append(opts, visitor.WithCache(cache.New(cfg.Cache.Size, cfg.Cache.TTL)))
	}
	return visitor.NewRenderer(d, opts...), nil
}

// Open connects to the configured database and returns a ready engine. The
// engine owns the connection and the log file, if any; Close releases both.
func Open(ctx context.Context, cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}

	renderer, err := NewRenderer(cfg)
	if err != nil {
		return nil, err
	}

	logData, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	conn, err := connector.Open(ctx, cfg.Database)
	if err != nil {
		logData.Logger.Error().Err(err).Msg("database connection failed")
		_ = logData.Close()
		return nil, err
	}
	if conn.Dialect().Name() != renderer.Dialect().Name() {
		_ = conn.Close()
		_ = logData.Close()
		return nil, fmt.Errorf("dialect %q does not match %s driver", cfg.Dialect, cfg.Database.Driver)
	}

	logData.Logger.Info().
		Str("driver", cfg.Database.Driver).
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Msg("database connected")

	e := New(conn.Database(), renderer, WithLogger(logData.Logger))
	e.closers = append(e.closers, logData)
	return e, nil
}

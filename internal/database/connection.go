package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog/log"

	"github.com/Raisondetr3/Person-Service-SOA/internal/config"
	"github.com/Raisondetr3/Person-Service-SOA/internal/logutil"
)

// Connection wraps the pgx pool so callers depend on one type instead
// of the driver surface.
type Connection struct {
	pool *pgxpool.Pool
}

// Connect opens a pool against the configured database and verifies it
// with a ping.
func Connect(ctx context.Context, cfg *config.DatabaseConfig) (*Connection, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConnections
	poolCfg.MinConns = cfg.MinConnections
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   tracelog.LoggerFunc(traceQuery),
		LogLevel: tracelog.LogLevelDebug,
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	log.Info().
		Str("dsn", logutil.SanitizeDSN(cfg.DSN())).
		Msg("Connected to database")

	return &Connection{pool: pool}, nil
}

// traceQuery logs executed statements at debug level with literal
// values redacted.
func traceQuery(_ context.Context, _ tracelog.LogLevel, msg string, data map[string]any) {
	ev := log.Debug()
	if sql, ok := data["sql"].(string); ok {
		ev = ev.Str("sql", logutil.SanitizeSQL(sql))
	}
	if d, ok := data["time"].(time.Duration); ok {
		ev = ev.Dur("duration", d)
	}
	ev.Msg(msg)
}

// Query runs a query returning rows.
func (c *Connection) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return c.pool.Query(ctx, sql, args...)
}

// QueryRow runs a query expected to return at most one row.
func (c *Connection) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return c.pool.QueryRow(ctx, sql, args...)
}

// Exec runs a statement without result rows.
func (c *Connection) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return c.pool.Exec(ctx, sql, args...)
}

// Close releases the pool.
func (c *Connection) Close() {
	c.pool.Close()
}

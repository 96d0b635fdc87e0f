// Package sqlite stores ticketflow keys in a local SQLite database.
//
// The adapter owns a zombiezen sqlitex pool with WAL journaling and a
// busy timeout, and keeps every key in a single two-column table. It is
// the durable backend the host binary uses by default.
package sqlite

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/lborres/ticketflow/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS ticketflow_kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);
`

type Config struct {
	// Path is the database file. The parent directory must exist.
	Path string

	// PoolSize defaults to max(runtime.NumCPU(), 4).
	PoolSize int

	Logger *zerolog.Logger
}

type Adapter struct {
	pool   *sqlitex.Pool
	logger zerolog.Logger
	path   string
}

var _ core.Storage = (*Adapter)(nil)

// Open creates the pool and the key/value table. The caller must Close
// the adapter.
func Open(cfg Config) (*Adapter, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = max(runtime.NumCPU(), 4)
	}

	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening %s: %w", cfg.Path, err)
	}

	logger.Info().Str("path", cfg.Path).Int("pool_size", poolSize).Msg("sqlite storage opened")

	return &Adapter{
		pool:   pool,
		logger: logger,
		path:   cfg.Path,
	}, nil
}

func prepareConnection(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("sqlite: schema: %w", err)
	}
	return nil
}

func (a *Adapter) Get(ctx context.Context, key string) (string, error) {
	conn, err := a.pool.Take(ctx)
	if err != nil {
		return "", fmt.Errorf("sqlite: take: %w", err)
	}
	defer a.pool.Put(conn)

	var value string
	found := false
	err = sqlitex.Execute(conn, `SELECT value FROM ticketflow_kv WHERE key = ?`, &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = stmt.ColumnText(0)
			found = true
			return nil
		},
	})
	if err != nil {
		return "", fmt.Errorf("sqlite: get %q: %w", key, err)
	}
	if !found {
		return "", core.ErrKeyNotFound
	}
	return value, nil
}

func (a *Adapter) Set(ctx context.Context, key, value string) error {
	conn, err := a.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("sqlite: take: %w", err)
	}
	defer a.pool.Put(conn)

	err = sqlitex.Execute(conn, `
		INSERT INTO ticketflow_kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`,
		&sqlitex.ExecOptions{Args: []any{key, value}})
	if err != nil {
		return fmt.Errorf("sqlite: set %q: %w", key, err)
	}
	return nil
}

func (a *Adapter) Remove(ctx context.Context, key string) error {
	conn, err := a.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("sqlite: take: %w", err)
	}
	defer a.pool.Put(conn)

	if err := sqlitex.Execute(conn, `DELETE FROM ticketflow_kv WHERE key = ?`, &sqlitex.ExecOptions{
		Args: []any{key},
	}); err != nil {
		return fmt.Errorf("sqlite: remove %q: %w", key, err)
	}
	return nil
}

// Close blocks until every borrowed connection is returned.
func (a *Adapter) Close() error {
	if err := a.pool.Close(); err != nil {
		return fmt.Errorf("sqlite: closing %s: %w", a.path, err)
	}
	a.logger.Info().Str("path", a.path).Msg("sqlite storage closed")
	return nil
}

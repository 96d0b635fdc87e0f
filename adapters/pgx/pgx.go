package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lborres/ticketflow"
)

// Schema creates the key/value table the adapter reads and writes.
const Schema = `
CREATE TABLE IF NOT EXISTS ticketflow_kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type Adapter struct {
	pool *pgxpool.Pool
}

var _ ticketflow.Storage = (*Adapter)(nil)

func New(pool *pgxpool.Pool) *Adapter {
	return &Adapter{
		pool: pool,
	}
}

// Connect parses dsn, opens a pool and applies Schema.
func Connect(ctx context.Context, dsn string) (*Adapter, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database pool: %w", err)
	}
	a := New(pool)
	if err := a.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return a, nil
}

func (a *Adapter) Migrate(ctx context.Context) error {
	if _, err := a.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create key/value table: %w", err)
	}
	return nil
}

func (a *Adapter) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := a.pool.QueryRow(ctx, `SELECT value FROM ticketflow_kv WHERE key=$1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ticketflow.ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, nil
}

func (a *Adapter) Set(ctx context.Context, key, value string) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO ticketflow_kv (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

func (a *Adapter) Remove(ctx context.Context, key string) error {
	if _, err := a.pool.Exec(ctx, `DELETE FROM ticketflow_kv WHERE key=$1`, key); err != nil {
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}
	return nil
}

func (a *Adapter) Close() {
	a.pool.Close()
}

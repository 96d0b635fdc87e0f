package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lborres/ticketflow/adapters/memory"
	pgxadapter "github.com/lborres/ticketflow/adapters/pgx"
	redisadapter "github.com/lborres/ticketflow/adapters/redis"
	sqliteadapter "github.com/lborres/ticketflow/adapters/sqlite"
	"github.com/lborres/ticketflow/config"
	"github.com/lborres/ticketflow/core"
)

// openStorage connects the configured backend. The returned func releases
// it and is never nil.
func openStorage(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (core.Storage, func(), error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.New(), func() {}, nil

	case config.BackendSQLite:
		store, err := sqliteadapter.Open(sqliteadapter.Config{Path: cfg.SQLitePath, Logger: &logger})
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close sqlite")
			}
		}, nil

	case config.BackendPostgres:
		store, err := pgxadapter.Connect(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case config.BackendRedis:
		store, err := redisadapter.Connect(ctx, cfg.RedisURL, cfg.RedisNamespace)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close redis")
			}
		}, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Backend)
	}
}

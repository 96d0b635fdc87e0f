package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lborres/ticketflow/core"
)

// Store reads and writes JSON documents through a core.Storage, under an
// optional key prefix.
//
// A document that exists but does not decode is treated as absent: the
// entry is removed and Load reports it as missing. Storage I/O errors are
// returned to the caller.
type Store struct {
	storage core.Storage
	prefix  string
	logger  zerolog.Logger
}

func NewStore(storage core.Storage, prefix string, logger zerolog.Logger) *Store {
	return &Store{
		storage: storage,
		prefix:  prefix,
		logger:  logger.With().Str("component", "store").Logger(),
	}
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

// Load decodes the document stored under key into v. It reports false
// when the key is absent or held undecodable data.
func (s *Store) Load(ctx context.Context, key string, v any) (bool, error) {
	raw, err := s.storage.Get(ctx, s.key(key))
	if err != nil {
		if errors.Is(err, core.ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding corrupt entry")
		if rmErr := s.storage.Remove(ctx, s.key(key)); rmErr != nil {
			s.logger.Error().Err(rmErr).Str("key", key).Msg("failed to remove corrupt entry")
		}
		return false, nil
	}
	return true, nil
}

// Save encodes v and writes it under key.
func (s *Store) Save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.storage.Set(ctx, s.key(key), string(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.storage.Remove(ctx, s.key(key)); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// CachedStorage is a read-through cache in front of a core.Storage.
// Writes go to the backend first and then refresh the cache; cache
// failures never fail the request. Keys listed as uncached always go
// straight to the backend.
type CachedStorage struct {
	storage  core.Storage
	cache    core.Cache
	uncached map[string]bool
}

var _ core.Storage = (*CachedStorage)(nil)

func NewCachedStorage(storage core.Storage, cache core.Cache, uncached ...string) *CachedStorage {
	c := &CachedStorage{storage: storage, cache: cache, uncached: make(map[string]bool, len(uncached))}
	for _, key := range uncached {
		c.uncached[key] = true
	}
	return c
}

func (c *CachedStorage) Get(ctx context.Context, key string) (string, error) {
	if c.uncached[key] {
		return c.storage.Get(ctx, key)
	}
	if value, err := c.cache.Get(key); err == nil {
		return value, nil
	}

	value, err := c.storage.Get(ctx, key)
	if err != nil {
		return "", err
	}
	_ = c.cache.Set(key, value)
	return value, nil
}

func (c *CachedStorage) Set(ctx context.Context, key, value string) error {
	if c.uncached[key] {
		return c.storage.Set(ctx, key, value)
	}
	if err := c.storage.Set(ctx, key, value); err != nil {
		_ = c.cache.Delete(key)
		return err
	}
	_ = c.cache.Set(key, value)
	return nil
}

func (c *CachedStorage) Remove(ctx context.Context, key string) error {
	err := c.storage.Remove(ctx, key)
	_ = c.cache.Delete(key)
	return err
}

// Stats returns the cache counters when the cache keeps them.
func (c *CachedStorage) Stats() (core.CacheStats, bool) {
	if s, ok := c.cache.(core.CacheWithStats); ok {
		return s.Stats(), true
	}
	return core.CacheStats{}, false
}

// Package redis stores ticketflow keys in Redis, one string key per
// storage key under an optional namespace.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lborres/ticketflow/core"
)

type Adapter struct {
	client    *redis.Client
	namespace string
}

var _ core.Storage = (*Adapter)(nil)

func New(client *redis.Client, namespace string) *Adapter {
	return &Adapter{client: client, namespace: namespace}
}

// Connect parses url, applies pool and timeout settings and pings the
// server before returning.
func Connect(ctx context.Context, url, namespace string) (*Adapter, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.MaxRetries = 3
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}

	return New(client, namespace), nil
}

func (a *Adapter) key(k string) string {
	if a.namespace == "" {
		return k
	}
	return a.namespace + ":" + k
}

func (a *Adapter) Get(ctx context.Context, key string) (string, error) {
	value, err := a.client.Get(ctx, a.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", core.ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, nil
}

func (a *Adapter) Set(ctx context.Context, key, value string) error {
	if err := a.client.Set(ctx, a.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

func (a *Adapter) Remove(ctx context.Context, key string) error {
	if err := a.client.Del(ctx, a.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}
	return nil
}

func (a *Adapter) Close() error {
	return a.client.Close()
}

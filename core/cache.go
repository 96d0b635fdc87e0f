package core

import "time"

// Cache holds recently read storage values keyed by storage key.
type Cache interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	Clear() error
}

type CacheWithStats interface {
	Cache
	Stats() CacheStats
}

type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

// CacheStats are simple counters for cache behavior.
// These are intended for diagnostics and monitoring.
type CacheStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

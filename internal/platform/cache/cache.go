package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned by operations on a closed or unconfigured cache.
var ErrUnavailable = errors.New("cache unavailable")

// Cache stores JSON-encoded values under string keys.
type Cache interface {
	// Get decodes the value at key into dst. found is false on a miss.
	Get(ctx context.Context, key string, dst any) (found bool, err error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}

type noopCache struct{}

// NewNoop returns a cache that never hits and accepts every write.
func NewNoop() Cache { return noopCache{} }

func (noopCache) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (noopCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (noopCache) Delete(context.Context, ...string) error               { return nil }
func (noopCache) DeletePrefix(context.Context, string) error            { return nil }
func (noopCache) Close() error                                          { return nil }

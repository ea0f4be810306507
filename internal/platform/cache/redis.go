package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/forum-backend/internal/platform/logger"
)

type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

type redisCache struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
}

// NewRedis connects to redis and pings it before returning.
func NewRedis(ctx context.Context, log *logger.Logger, opts RedisOptions) (Cache, goredis.UniversalClient, error) {
	if log == nil {
		return nil, nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, nil, fmt.Errorf("missing redis addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisFromClient(log, rdb, opts.KeyPrefix), rdb, nil
}

func NewRedisFromClient(log *logger.Logger, rdb goredis.UniversalClient, keyPrefix string) Cache {
	return &redisCache{
		log:    log.With("service", "RedisCache"),
		rdb:    rdb,
		prefix: keyPrefix,
	}
}

func (c *redisCache) key(k string) string { return c.prefix + k }

func (c *redisCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c == nil || c.rdb == nil {
		return false, ErrUnavailable
	}
	raw, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// a value we cannot decode is treated as absent and dropped.
		_ = c.rdb.Del(ctx, c.key(key)).Err()
		c.log.Warn("cache decode failed", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c == nil || c.rdb == nil {
		return ErrUnavailable
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(key), raw, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c == nil || c.rdb == nil {
		return ErrUnavailable
	}
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.key(k))
	}
	return c.rdb.Del(ctx, full...).Err()
}

func (c *redisCache) DeletePrefix(ctx context.Context, prefix string) error {
	if c == nil || c.rdb == nil {
		return ErrUnavailable
	}
	var cursor uint64
	match := c.key(prefix) + "*"
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, match, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (c *redisCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

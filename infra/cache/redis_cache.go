package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/coinwatch/coinwatch/pkg/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache implements cache.RateCache using Redis. It lets a fleet of
// clients share resolved rates; the serialized rate carries its own
// ResolvedAt/TTL so the engine's lazy expiry check still applies.
type RedisCache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisCache creates a RedisCache from redis options.
func NewRedisCache(opt *redis.Options, prefix string, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: redis.NewClient(opt), prefix: prefix, logger: logger}
}

func (r *RedisCache) key(key string) string {
	return r.prefix + key
}

// Get retrieves a rate. A miss returns (nil, nil).
func (r *RedisCache) Get(key string) (*domain.ExchangeRate, error) {
	ctx := context.Background()
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("redis cache miss", "key", key)
		return nil, nil
	}
	if err != nil {
		r.logger.Error("redis cache get error", "key", key, "error", err)
		return nil, err
	}
	var rate domain.ExchangeRate
	if err := json.Unmarshal([]byte(val), &rate); err != nil {
		r.logger.Error("redis cache unmarshal error", "key", key, "error", err)
		return nil, err
	}
	r.logger.Debug("redis cache hit", "key", key, "rate", rate.Rate)
	return &rate, nil
}

// Set stores a rate with the given TTL.
func (r *RedisCache) Set(key string, rate *domain.ExchangeRate, ttl time.Duration) error {
	ctx := context.Background()
	data, err := json.Marshal(rate)
	if err != nil {
		r.logger.Error("redis cache marshal error", "key", key, "error", err)
		return err
	}
	if err := r.client.Set(ctx, r.key(key), data, ttl).Err(); err != nil {
		r.logger.Error("redis cache set error", "key", key, "error", err)
		return err
	}
	return nil
}

// Delete removes a rate.
func (r *RedisCache) Delete(key string) error {
	return r.client.Del(context.Background(), r.key(key)).Err()
}

// Clear removes all entries under the cache prefix.
func (r *RedisCache) Clear() error {
	ctx := context.Background()
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Package cache keeps the last fetched reading set in Redis.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"glucosedash/internal/domain"
	"glucosedash/internal/metrics"
	"glucosedash/internal/ports"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultKey = "glucosedash:readings"

func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "failed to connect to Redis")
	}
	return client, nil
}

// CachedSource serves readings from Redis and refills it from the wrapped
// source on a miss. Redis failures degrade to a direct fetch.
type CachedSource struct {
	client *redis.Client
	source ports.ReadingSource
	key    string
	ttl    time.Duration
	log    *zap.SugaredLogger
}

var _ ports.ReadingSource = (*CachedSource)(nil)

func NewCachedSource(log *zap.SugaredLogger, client *redis.Client, source ports.ReadingSource, key string, ttl time.Duration) *CachedSource {
	if key == "" {
		key = DefaultKey
	}
	return &CachedSource{client: client, source: source, key: key, ttl: ttl, log: log}
}

func (c *CachedSource) FetchReadings(ctx context.Context) ([]domain.Reading, error) {
	cached, err := c.client.Get(ctx, c.key).Bytes()
	switch {
	case err == nil:
		var readings []domain.Reading
		if err := json.Unmarshal(cached, &readings); err == nil {
			metrics.CacheOperations.WithLabelValues("hit").Inc()
			return readings, nil
		}
		c.log.Warnw("discarding corrupt cache entry", "key", c.key)
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warnw("cache read failed, fetching from source", "key", c.key, "error", err)
		metrics.CacheOperations.WithLabelValues("error").Inc()
	}
	metrics.CacheOperations.WithLabelValues("miss").Inc()

	readings, err := c.source.FetchReadings(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.store(ctx, readings); err != nil {
		c.log.Warnw("cache write failed", "key", c.key, "error", err)
	}
	return readings, nil
}

// Invalidate drops the cached set so the next fetch goes to the source.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	return errors.Wrap(c.client.Del(ctx, c.key).Err(), "failed to invalidate cache")
}

func (c *CachedSource) store(ctx context.Context, readings []domain.Reading) error {
	data, err := json.Marshal(readings)
	if err != nil {
		return errors.Wrap(err, "failed to marshal readings")
	}
	return c.client.Set(ctx, c.key, data, c.ttl).Err()
}

// Package rediscache caches per-movie average ratings in Redis.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const avgRatingKeyPrefix = "rating:avg:"

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

type Options struct {
	Addr         string
	Password     string
	DB           int
	TTL          time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// New connects and pings Redis. Callers treat an error as "run without cache".
func New(ctx context.Context, opts Options) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Cache{rdb: rdb, ttl: opts.TTL}, nil
}

type cachedAverage struct {
	Average *float64 `json:"average"`
}

func avgRatingKey(movieID string) string {
	return avgRatingKeyPrefix + movieID
}

// AverageRating returns the cached average. found is false on a cache miss.
// A nil average with found=true means the movie has no ratings.
func (c *Cache) AverageRating(ctx context.Context, movieID string) (avg *float64, found bool, err error) {
	raw, err := c.rdb.Get(ctx, avgRatingKey(movieID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var cached cachedAverage
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, err
	}
	return cached.Average, true, nil
}

// SetAverageRating fills a missing entry. An entry that is already present is left
// untouched; only InvalidateAverageRating or the TTL removes it.
func (c *Cache) SetAverageRating(ctx context.Context, movieID string, avg *float64) error {
	data, err := json.Marshal(cachedAverage{Average: avg})
	if err != nil {
		return err
	}
	return c.rdb.SetNX(ctx, avgRatingKey(movieID), data, c.ttl).Err()
}

func (c *Cache) InvalidateAverageRating(ctx context.Context, movieIDs ...string) error {
	if len(movieIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(movieIDs))
	for _, id := range movieIDs {
		keys = append(keys, avgRatingKey(id))
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}

package report

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-redis/redis/v8"
)

const (
	keyPrefix     = "report:"
	generationKey = keyPrefix + "gen"
)

// Cache stores computed reports. Keys are scoped by a generation that
// Invalidate bumps, so a result computed before an invalidation is never
// served after it.
type Cache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, gen int64, key string, v interface{}) error
	Invalidate(ctx context.Context) error
}

type redisCache struct {
	c   *redis.Client
	ttl time.Duration
}

func generationScoped(gen int64, key string) string {
	return keyPrefix + strconv.FormatInt(gen, 10) + ":" + key
}

func (r *redisCache) Generation(ctx context.Context) (int64, error) {
	gen, err := r.c.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (r *redisCache) Get(ctx context.Context, gen int64, key string, dst interface{}) (bool, error) {
	data, err := r.c.Get(ctx, generationScoped(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err = sonic.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCache) Set(ctx context.Context, gen int64, key string, v interface{}) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	return r.c.Set(ctx, generationScoped(gen, key), data, r.ttl).Err()
}

// Invalidate moves every reader to a new generation. Entries of older
// generations are left to expire with the TTL.
func (r *redisCache) Invalidate(ctx context.Context) error {
	return r.c.Incr(ctx, generationKey).Err()
}

func NewRedisCache(c *redis.Client, ttl time.Duration) Cache {
	return &redisCache{c: c, ttl: ttl}
}

type noCache struct{}

func (noCache) Generation(context.Context) (int64, error)                     { return 0, nil }
func (noCache) Get(context.Context, int64, string, interface{}) (bool, error) { return false, nil }
func (noCache) Set(context.Context, int64, string, interface{}) error         { return nil }
func (noCache) Invalidate(context.Context) error                              { return nil }

// NoCache computes every report on demand.
func NoCache() Cache { return noCache{} }

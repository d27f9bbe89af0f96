package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PrecioCache stores price-search results per user. Invalidate bumps a
// per-user generation counter, so stale entries are never read again and
// simply expire on their own TTL.
//
// Callers read Generation once, before computing a result, and pass it to
// both Get and Set. A result computed before an Invalidate is then stored
// under the old generation, where nobody reads it.
type PrecioCache interface {
	Generation(ctx context.Context, userID uuid.UUID) (int64, error)
	Get(ctx context.Context, userID uuid.UUID, gen int64, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, userID uuid.UUID, gen int64, key string, v interface{}) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

type precioCacheRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPrecioCache(rdb *redis.Client, ttl time.Duration) PrecioCache {
	return &precioCacheRepo{rdb: rdb, ttl: ttl}
}

func generacionKey(userID uuid.UUID) string { return "precios:gen:" + userID.String() }

func entryKey(userID uuid.UUID, gen int64, key string) string {
	return fmt.Sprintf("precios:%s:%d:%s", userID, gen, key)
}

func (c *precioCacheRepo) Generation(ctx context.Context, userID uuid.UUID) (int64, error) {
	gen, err := c.rdb.Get(ctx, generacionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *precioCacheRepo) Get(ctx context.Context, userID uuid.UUID, gen int64, key string, dst interface{}) (bool, error) {
	k := entryKey(userID, gen, key)
	b, err := c.rdb.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("cache corrupta %s: %w", k, err)
	}
	return true, nil
}

func (c *precioCacheRepo) Set(ctx context.Context, userID uuid.UUID, gen int64, key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, entryKey(userID, gen, key), b, c.ttl).Err()
}

func (c *precioCacheRepo) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return c.rdb.Incr(ctx, generacionKey(userID)).Err()
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"devhub/internal/observability"
)

const (
	profileListKey       = "profiles:all"
	profileUserKeyPrefix = "profile:user:%s"

	// generationKey is bumped by every invalidation. A fill that started
	// under an older generation is discarded.
	generationKey = "cache:generation"
)

var errStaleFill = errors.New("cache generation changed during fill")

// DefaultTTL applies when a Cache is built with a non-positive TTL.
const DefaultTTL = 5 * time.Minute

// ProfileListKey is the key holding the public profile list.
func ProfileListKey() string {
	return profileListKey
}

// ProfileUserKey is the key holding a single user's public profile.
func ProfileUserKey(userID string) string {
	return fmt.Sprintf(profileUserKeyPrefix, userID)
}

// Cache is a JSON cache over Redis. A Cache with a nil client is disabled:
// reads always miss and writes are dropped.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

// New returns a Cache over client. client may be nil.
func New(client *redis.Client, ttl time.Duration, log *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl, log: log}
}

// Enabled reports whether the cache has a Redis client.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// GetJSON loads key into dest. It returns false without error on a miss.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores v under key for the cache TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if !c.Enabled() {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

// Aside serves key from Redis when present. On a miss it calls fetch, which
// must populate dest, and stores the result unless an invalidation ran in
// the meantime. Redis failures degrade to fetch.
func (c *Cache) Aside(ctx context.Context, keyspace, key string, dest any, fetch func() error) error {
	found, err := c.GetJSON(ctx, key, dest)
	if err != nil {
		c.log.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if found {
		observability.CacheResults.WithLabelValues(keyspace, "hit").Inc()
		return nil
	}
	if !c.Enabled() {
		return fetch()
	}
	observability.CacheResults.WithLabelValues(keyspace, "miss").Inc()

	gen, genErr := c.generation(ctx, c.client)
	if err := fetch(); err != nil {
		return err
	}
	if genErr != nil {
		return nil
	}

	switch err := c.fill(ctx, key, dest, gen); {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		c.log.DebugContext(ctx, "cache fill skipped after invalidation", slog.String("key", key))
	default:
		c.log.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

// fill stores v under key only if no invalidation ran since gen was read.
func (c *Cache) fill(ctx context.Context, key string, v any, gen string) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.generation(ctx, tx)
		if err != nil {
			return err
		}
		if current != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, c.ttl)
			return nil
		})
		return err
	}, generationKey)
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *Cache) generation(ctx context.Context, r stringGetter) (string, error) {
	gen, err := r.Get(ctx, generationKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return gen, err
}

// Invalidate deletes keys. Failures are logged; a stale entry expires with its TTL.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		c.log.WarnContext(ctx, "cache invalidation failed", slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}

// InvalidateProfile drops the list entry and the entry for userID.
func (c *Cache) InvalidateProfile(ctx context.Context, userID string) {
	c.Invalidate(ctx, ProfileListKey(), ProfileUserKey(userID))
}

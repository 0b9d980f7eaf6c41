// Package bootstrap connects the configured store backend and Redis.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"devhub/internal/cache"
	"devhub/internal/config"
	"devhub/internal/database"
	"devhub/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs migrations (postgres) or index creation (mongo).
	ApplySchema bool
	// RequireRedis fails startup instead of running without Redis.
	RequireRedis bool
}

// Runtime holds the live connections of one process.
type Runtime struct {
	Store *repository.Store
	Redis *redis.Client
	Cache *cache.Cache

	db    *gorm.DB
	mongo *mongo.Client
	log   *slog.Logger
}

// InitRuntime connects the store selected by cfg.StoreDriver and, when
// reachable, Redis. Without Redis the cache is disabled.
func InitRuntime(ctx context.Context, cfg *config.Config, log *slog.Logger, opts Options) (*Runtime, error) {
	rt := &Runtime{log: log}

	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, db, err := database.ConnectMongo(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("mongo connection failed: %w", err)
		}
		rt.mongo = client
		if opts.ApplySchema {
			if err := database.EnsureMongoIndexes(ctx, db); err != nil {
				_ = client.Disconnect(ctx)
				return nil, fmt.Errorf("mongo index creation failed: %w", err)
			}
		}
		rt.Store = repository.NewMongoStore(db)
	default:
		db, err := database.ConnectWithOptions(ctx, cfg, log, database.ConnectOptions{ApplySchema: opts.ApplySchema})
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		rt.db = db
		rt.Store = repository.NewGormStore(db)
	}

	rdb, err := cache.NewClient(ctx, cfg.RedisURL)
	switch {
	case err == nil:
		rt.Redis = rdb
	case opts.RequireRedis:
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("redis connection failed: %w", err)
	default:
		log.WarnContext(ctx, "redis unavailable, running without cache, rate limits and realtime feed",
			slog.String("error", err.Error()))
	}

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	rt.Cache = cache.New(rt.Redis, ttl, log)
	rt.Store.Profiles = repository.NewCachedProfileRepository(rt.Store.Profiles, rt.Cache)

	return rt, nil
}

// Close releases every connection held by the runtime.
func (rt *Runtime) Close(ctx context.Context) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if rt.db != nil {
		keep(database.Close(rt.db))
	}
	if rt.mongo != nil {
		keep(rt.mongo.Disconnect(ctx))
	}
	if rt.Redis != nil {
		keep(rt.Redis.Close())
	}
	return firstErr
}

package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"devhub/internal/config"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Collection names used by the Mongo store.
const (
	UsersCollection    = "users"
	ProfilesCollection = "profiles"
	PostsCollection    = "posts"
)

// ConnectMongo connects to cfg.MongoURI, verifies the primary is reachable
// and ensures the collection indexes exist.
func ConnectMongo(ctx context.Context, cfg *config.Config, log *slog.Logger) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	if cfg.DBMaxOpenConns > 0 {
		opts.SetMaxPoolSize(uint64(cfg.DBMaxOpenConns))
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(cfg.MongoDatabase)
	if err := EnsureMongoIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	log.Info("Mongo connected successfully", slog.String("database", cfg.MongoDatabase))
	return client, db, nil
}

// EnsureMongoIndexes creates the unique and ordering indexes the store relies on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ProfilesCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		PostsCollection: {
			{Keys: bson.D{{Key: "date", Value: -1}}},
			{Keys: bson.D{{Key: "user", Value: 1}}},
		},
	}
	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

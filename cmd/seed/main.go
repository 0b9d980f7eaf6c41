// Command main seeds the configured store with demo users, profiles and posts.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"devhub/internal/auth"
	"devhub/internal/bootstrap"
	"devhub/internal/config"
	"devhub/internal/observability"
	"devhub/internal/seed"
	"devhub/internal/service"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	maxLikes := flag.Int("likes", 8, "Maximum likes per post")
	maxComments := flag.Int("comments", 4, "Maximum comments per post")
	seedValue := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d posts\n", *numUsers, *numPosts)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := observability.NewLogger(cfg.Env, os.Stderr)

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, logger, bootstrap.Options{ApplySchema: true})
	if err != nil {
		log.Fatalf("Failed to connect to store: %v", err)
	}
	defer func() { _ = rt.Close(ctx) }()

	tokens := auth.NewTokens(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	opts := seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		MaxLikes:    *maxLikes,
		MaxComments: *maxComments,
		Seed:        *seedValue,
	}
	s := seed.NewSeeder(
		rt.Store,
		service.NewUserService(rt.Store.Users, tokens, logger),
		service.NewProfileService(rt.Store.Profiles, rt.Store.Users, logger),
		service.NewPostService(rt.Store.Posts, rt.Store.Users, nil, logger),
		opts,
		logger,
	)

	sum, err := s.Run(ctx, opts)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ Created %d users, %d posts, %d likes, %d comments", sum.Users, sum.Posts, sum.Likes, sum.Comments)
	log.Printf("📧 All seeded users have the password: %s", seed.DefaultPassword)
}

package seed

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"devhub/internal/auth"
	"devhub/internal/database"
	"devhub/internal/repository"
	"devhub/internal/service"
	"devhub/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSeeder(t *testing.T, opts Options) (*Seeder, *repository.Store) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewGormStore(db)
	tokens := auth.NewTokens("seed-test-secret-0123456789abcdef0123", time.Hour)

	s := NewSeeder(
		store,
		service.NewUserService(store.Users, tokens, log),
		service.NewProfileService(store.Profiles, store.Users, log),
		service.NewPostService(store.Posts, store.Users, nil, log),
		opts,
		log,
	)
	return s, store
}

func TestSeeder_Run(t *testing.T) {
	opts := Options{NumUsers: 4, NumPosts: 6, MaxLikes: 3, MaxComments: 2, Seed: 42}
	s, store := setupSeeder(t, opts)
	ctx := context.Background()

	sum, err := s.Run(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Users)
	assert.Equal(t, 4, sum.Profiles)
	assert.Equal(t, 6, sum.Posts)

	profiles, err := store.Profiles.List(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 4)
	for _, p := range profiles {
		assert.NotEmpty(t, p.Status)
		assert.GreaterOrEqual(t, len(p.Skills), 3)
	}

	posts, err := store.Posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 6)

	likes, comments := 0, 0
	for _, p := range posts {
		seen := map[string]bool{}
		for _, l := range p.Likes {
			assert.False(t, seen[l.UserID], "user liked a post twice")
			seen[l.UserID] = true
		}
		likes += len(p.Likes)
		comments += len(p.Comments)
	}
	assert.Equal(t, sum.Likes, likes)
	assert.Equal(t, sum.Comments, comments)
}

func TestSeeder_NoUsers(t *testing.T) {
	opts := Options{NumUsers: 0, NumPosts: 10}
	s, _ := setupSeeder(t, opts)

	sum, err := s.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Zero(t, sum.Posts)
}

func TestFactory_RequestsPassValidation(t *testing.T) {
	v := validation.New()
	fa := NewFactory(7)

	for i := 0; i < 20; i++ {
		require.NoError(t, v.Struct(fa.Register()))
		require.NoError(t, v.Struct(fa.Profile()))
		require.NoError(t, v.Struct(fa.Experience(i%2 == 0)))
		require.NoError(t, v.Struct(fa.Education()))
		require.NoError(t, v.Struct(service.TextRequest{Text: fa.PostText()}))
	}
}

func TestFactory_Deterministic(t *testing.T) {
	a, b := NewFactory(99), NewFactory(99)
	assert.Equal(t, a.Register(), b.Register())
	assert.Equal(t, a.PostText(), b.PostText())
}

func TestFactory_ExperienceDates(t *testing.T) {
	fa := NewFactory(3)

	past := fa.Experience(false)
	require.NotNil(t, past.To)
	entry, err := past.Entry()
	require.NoError(t, err)
	require.NotNil(t, entry.To)
	assert.False(t, entry.To.Before(entry.From))

	current := fa.Experience(true)
	assert.Nil(t, current.To)
	assert.True(t, current.Current)
}

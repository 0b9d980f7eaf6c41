package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil))), mr
}

func TestCache_AsideFetchesOnceThenHits(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *payload) func() error {
		return func() error {
			calls++
			*dest = payload{Name: "alice", Items: []string{"go"}}
			return nil
		}
	}

	var first payload
	require.NoError(t, c.Aside(ctx, "profile", ProfileUserKey("u1"), &first, fetch(&first)))
	var second payload
	require.NoError(t, c.Aside(ctx, "profile", ProfileUserKey("u1"), &second, fetch(&second)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("profile:user:u1"))
	assert.Equal(t, time.Minute, mr.TTL("profile:user:u1"))
}

func TestCache_AsideDoesNotStoreFetchErrors(t *testing.T) {
	c, mr := newTestCache(t)
	boom := errors.New("boom")

	var dest payload
	err := c.Aside(context.Background(), "profile", ProfileListKey(), &dest, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(ProfileListKey()))
}

func TestCache_AsideDegradesWhenRedisIsDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	var dest payload
	err := c.Aside(context.Background(), "profile", ProfileListKey(), &dest, func() error {
		dest.Name = "from-store"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "from-store", dest.Name)
}

func TestCache_InvalidateProfile(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, ProfileListKey(), []payload{{Name: "a"}}))
	require.NoError(t, c.SetJSON(ctx, ProfileUserKey("u1"), payload{Name: "a"}))
	require.NoError(t, c.SetJSON(ctx, ProfileUserKey("u2"), payload{Name: "b"}))

	c.InvalidateProfile(ctx, "u1")

	assert.False(t, mr.Exists(ProfileListKey()))
	assert.False(t, mr.Exists(ProfileUserKey("u1")))
	assert.True(t, mr.Exists(ProfileUserKey("u2")))
}

func TestCache_AsideSkipsFillAfterConcurrentInvalidation(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var stale payload
	err := c.Aside(ctx, "profile", ProfileUserKey("u1"), &stale, func() error {
		stale = payload{Name: "old"}
		// A writer commits and invalidates while this read is in flight.
		c.InvalidateProfile(ctx, "u1")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "old", stale.Name)
	assert.False(t, mr.Exists(ProfileUserKey("u1")))

	var fresh payload
	require.NoError(t, c.Aside(ctx, "profile", ProfileUserKey("u1"), &fresh, func() error {
		fresh = payload{Name: "new"}
		return nil
	}))
	var cached payload
	found, err := c.GetJSON(ctx, ProfileUserKey("u1"), &cached)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "new", cached.Name)
}

func TestCache_DisabledIsNoop(t *testing.T) {
	c := New(nil, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	assert.False(t, c.Enabled())
	found, err := c.GetJSON(ctx, "k", &payload{})
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.SetJSON(ctx, "k", payload{}))
	c.Invalidate(ctx, "k")

	calls := 0
	require.NoError(t, c.Aside(ctx, "x", "k", &payload{}, func() error { calls++; return nil }))
	require.NoError(t, c.Aside(ctx, "x", "k", &payload{}, func() error { calls++; return nil }))
	assert.Equal(t, 2, calls)
}

func TestOptions(t *testing.T) {
	opts, err := Options("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)

	opts, err = Options("redis://:secret@cache:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	_, err = Options("redis://%%bad")
	assert.Error(t, err)
}

func TestNewClient_PingFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewClient(context.Background(), addr)
	assert.Error(t, err)
}

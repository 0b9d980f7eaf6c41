package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"devhub/internal/config"
	"devhub/internal/database"
	"devhub/internal/middleware"
	"devhub/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:      testSecret,
		JWTTTLHours:    1,
		Port:           "0",
		Env:            "test",
		StoreDriver:    config.StoreDriverPostgres,
		AllowedOrigins: "http://localhost:3000",
		FeatureFlags:   "realtime_feed=on",
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestStore(t *testing.T) *repository.Store {
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
	return repository.NewGormStore(db)
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// newTestApp builds the full application over sqlite. rdb may be nil.
func newTestApp(t *testing.T, rdb *redis.Client) (*Server, *fiber.App) {
	t.Helper()
	s := NewServerWithDeps(testConfig(), discardLogger(), setupTestStore(t), rdb)
	return s, s.NewApp()
}

type apiResponse struct {
	Status int
	Body   []byte
}

func (r apiResponse) decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, v), string(r.Body))
}

func (r apiResponse) msg(t *testing.T) string {
	t.Helper()
	var out struct {
		Msg string `json:"msg"`
	}
	r.decode(t, &out)
	return out.Msg
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) apiResponse {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(middleware.TokenHeader, token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return apiResponse{Status: resp.StatusCode, Body: raw}
}

// register creates an account and returns its token.
func register(t *testing.T, app *fiber.App, name, email string) string {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/users", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))

	var out tokenResponse
	resp.decode(t, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devhub/internal/auth"
	"devhub/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newGuardApp(t *testing.T, rdb *redis.Client) (*fiber.App, *auth.Tokens) {
	t.Helper()
	tokens := auth.NewTokens(testSecret, time.Hour)
	guard := NewAuthGuard(tokens, rdb, discardLogger())

	app := fiber.New()
	handler := func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": UserID(c)})
	}
	app.Get("/api/auth", guard.Required(), handler)
	app.Get("/api/ws/feed", guard.Required(), handler)
	return app, tokens
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func TestAuthGuard_Required(t *testing.T) {
	app, tokens := newGuardApp(t, nil)

	valid, err := tokens.Issue("user-123")
	require.NoError(t, err)
	expired, err := auth.NewTokens(testSecret, -time.Hour).Issue("user-123")
	require.NoError(t, err)
	foreign, err := auth.NewTokens("some-other-secret-value-that-is-long-enough", time.Hour).Issue("user-123")
	require.NoError(t, err)

	tests := []struct {
		name           string
		header         string
		value          string
		expectedStatus int
		expectedUserID string
		expectedMsg    string
	}{
		{name: "x-auth-token header", header: TokenHeader, value: valid, expectedStatus: http.StatusOK, expectedUserID: "user-123"},
		{name: "bearer fallback", header: "Authorization", value: "Bearer " + valid, expectedStatus: http.StatusOK, expectedUserID: "user-123"},
		{name: "missing token", expectedStatus: http.StatusUnauthorized, expectedMsg: msgNoToken},
		{name: "basic scheme", header: "Authorization", value: "Basic dXNlcjpwYXNz", expectedStatus: http.StatusUnauthorized, expectedMsg: msgNoToken},
		{name: "malformed token", header: TokenHeader, value: "malformed.token.here", expectedStatus: http.StatusUnauthorized, expectedMsg: msgInvalidToken},
		{name: "expired token", header: TokenHeader, value: expired, expectedStatus: http.StatusUnauthorized, expectedMsg: msgInvalidToken},
		{name: "wrong signature", header: TokenHeader, value: foreign, expectedStatus: http.StatusUnauthorized, expectedMsg: msgInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]string
				decodeBody(t, resp, &body)
				assert.Equal(t, tt.expectedUserID, body["userID"])
				return
			}
			var body models.ErrorResponse
			decodeBody(t, resp, &body)
			assert.Equal(t, tt.expectedMsg, body.Msg)
			assert.Equal(t, models.CodeUnauthorized, body.Code)
		})
	}
}

func TestAuthGuard_QueryTokenOnlyOnWebSocketPaths(t *testing.T) {
	app, tokens := newGuardApp(t, nil)
	token, err := tokens.Issue("user-9")
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/ws/feed?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/auth?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthGuard_TicketIsSingleUse(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app, _ := newGuardApp(t, rdb)

	require.NoError(t, mr.Set(auth.WSTicketPrefix+"abc", "user-7"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/ws/feed?ticket=abc", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "user-7", body["userID"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/ws/feed?ticket=abc", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthGuard_RevokedToken(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app, tokens := newGuardApp(t, rdb)

	token, err := tokens.Issue("user-1")
	require.NoError(t, err)
	claims, err := tokens.Parse(token)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth", nil)
	req.Header.Set(TokenHeader, token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, rdb.Set(context.Background(), auth.RevokedTokenPrefix+claims.ID, "1", time.Hour).Err())

	req = httptest.NewRequest(http.MethodGet, "/api/auth", nil)
	req.Header.Set(TokenHeader, token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

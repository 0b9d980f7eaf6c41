package service

import (
	"context"
	"testing"
	"time"

	"devhub/internal/auth"
	"devhub/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_IssueWSTicket(t *testing.T) {
	mr := miniredis.RunT(t)
	svc := NewSessionService(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	ticket, err := svc.IssueWSTicket(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, ticket)

	got, err := mr.Get(auth.WSTicketPrefix + ticket)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got)
	assert.Equal(t, WSTicketTTL, mr.TTL(auth.WSTicketPrefix+ticket))
}

func TestSessionService_Revoke(t *testing.T) {
	mr := miniredis.RunT(t)
	svc := NewSessionService(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	claims := &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        "jti-1",
		ExpiresAt: jwt.NewNumericDate(now.Add(2 * time.Hour)),
	}}
	require.NoError(t, svc.Revoke(context.Background(), claims))
	assert.True(t, mr.Exists(auth.RevokedTokenPrefix+"jti-1"))
	assert.Equal(t, 2*time.Hour, mr.TTL(auth.RevokedTokenPrefix+"jti-1"))

	expired := &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        "jti-2",
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
	}}
	require.NoError(t, svc.Revoke(context.Background(), expired))
	assert.False(t, mr.Exists(auth.RevokedTokenPrefix+"jti-2"))
}

func TestSessionService_WithoutRedis(t *testing.T) {
	svc := NewSessionService(nil)
	assert.False(t, svc.Enabled())

	_, err := svc.IssueWSTicket(context.Background(), "user-1")
	assert.True(t, models.IsCode(err, models.CodeInternal))

	err = svc.Revoke(context.Background(), nil)
	assert.True(t, models.IsCode(err, models.CodeUnauthorized))
}

package service

import (
	"context"
	"errors"
	"time"

	"devhub/internal/auth"
	"devhub/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// WSTicketTTL bounds how long a WebSocket ticket can wait to be redeemed.
const WSTicketTTL = 30 * time.Second

var errSessionsUnavailable = errors.New("session store not configured")

// SessionService manages Redis-backed session state: single-use WebSocket
// tickets and revoked tokens.
type SessionService struct {
	rdb *redis.Client
	now func() time.Time
}

func NewSessionService(rdb *redis.Client) *SessionService {
	return &SessionService{rdb: rdb, now: time.Now}
}

// Enabled reports whether a Redis client is configured.
func (s *SessionService) Enabled() bool {
	return s != nil && s.rdb != nil
}

// IssueWSTicket stores a ticket the auth guard exchanges for userID once.
func (s *SessionService) IssueWSTicket(ctx context.Context, userID string) (string, error) {
	if !s.Enabled() {
		return "", models.NewInternalError(errSessionsUnavailable)
	}
	ticket := uuid.NewString()
	if err := s.rdb.Set(ctx, auth.WSTicketPrefix+ticket, userID, WSTicketTTL).Err(); err != nil {
		return "", models.NewInternalError(err)
	}
	return ticket, nil
}

// Revoke blacklists the token described by claims until it would have
// expired anyway.
func (s *SessionService) Revoke(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return models.NewUnauthorizedError("Token is not valid")
	}
	if !s.Enabled() {
		return models.NewInternalError(errSessionsUnavailable)
	}

	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(s.now())
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, auth.RevokedTokenPrefix+claims.ID, "1", ttl).Err(); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

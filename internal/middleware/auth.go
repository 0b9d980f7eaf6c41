// Package middleware provides the Fiber middleware shared by all routes.
package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"devhub/internal/auth"
	"devhub/internal/models"
	"devhub/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Headers and query parameters that may carry credentials.
const (
	TokenHeader = "x-auth-token"
	TicketQuery = "ticket"
	TokenQuery  = "token"
)

const userIDLocal = "userID"

// Messages returned by the guard.
const (
	msgNoToken      = "No token, authorization denied"
	msgInvalidToken = "Token is not valid"
)

// AuthGuard authenticates requests from a session token or a WebSocket ticket.
type AuthGuard struct {
	tokens *auth.Tokens
	rdb    *redis.Client
	log    *slog.Logger
}

// NewAuthGuard returns an AuthGuard. rdb may be nil, which disables
// tickets and token revocation.
func NewAuthGuard(tokens *auth.Tokens, rdb *redis.Client, log *slog.Logger) *AuthGuard {
	return &AuthGuard{tokens: tokens, rdb: rdb, log: log}
}

// UserID returns the authenticated user set by AuthGuard.Required.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDLocal).(string)
	return id
}

// SetUserID records the authenticated user on the request.
func SetUserID(c *fiber.Ctx, userID string) {
	c.Locals(userIDLocal, userID)
	c.SetUserContext(observability.WithUserID(c.UserContext(), userID))
}

// Required rejects requests without a valid credential with 401.
func (g *AuthGuard) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		isWSPath := strings.HasPrefix(c.Path(), "/api/ws/")

		// WebSocket tickets are short-lived and single-use.
		if ticket := c.Query(TicketQuery); ticket != "" && isWSPath {
			userID, err := g.redeemTicket(c, ticket)
			if err != nil {
				return g.reject(c, "ticket", msgInvalidToken)
			}
			SetUserID(c, userID)
			return c.Next()
		}

		raw := tokenFromRequest(c, isWSPath)
		if raw == "" {
			return g.reject(c, "missing", msgNoToken)
		}

		claims, err := g.tokens.Parse(raw)
		if err != nil {
			return g.reject(c, "invalid", msgInvalidToken)
		}
		if g.revoked(c, claims.ID) {
			return g.reject(c, "revoked", msgInvalidToken)
		}

		SetUserID(c, claims.UserID())
		c.Locals("tokenClaims", claims)
		return c.Next()
	}
}

// Claims returns the verified token claims of the request, if any.
func Claims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals("tokenClaims").(*auth.Claims)
	return claims
}

func tokenFromRequest(c *fiber.Ctx, allowQuery bool) string {
	if tok := strings.TrimSpace(c.Get(TokenHeader)); tok != "" {
		return tok
	}
	if scheme, tok, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(tok)
	}
	// Browsers cannot set headers on a WebSocket handshake.
	if allowQuery {
		return c.Query(TokenQuery)
	}
	return ""
}

func (g *AuthGuard) redeemTicket(c *fiber.Ctx, ticket string) (string, error) {
	if g.rdb == nil {
		return "", errors.New("tickets require redis")
	}
	return g.rdb.GetDel(c.UserContext(), auth.WSTicketPrefix+ticket).Result()
}

func (g *AuthGuard) revoked(c *fiber.Ctx, jti string) bool {
	if g.rdb == nil || jti == "" {
		return false
	}
	n, err := g.rdb.Exists(c.UserContext(), auth.RevokedTokenPrefix+jti).Result()
	if err != nil {
		g.log.WarnContext(c.UserContext(), "token revocation check failed", slog.String("error", err.Error()))
		return false
	}
	return n > 0
}

func (g *AuthGuard) reject(c *fiber.Ctx, reason, msg string) error {
	observability.AuthFailures.WithLabelValues(reason).Inc()
	return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(msg))
}

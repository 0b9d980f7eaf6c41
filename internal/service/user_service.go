// Package service holds the business rules behind the HTTP handlers.
package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"devhub/internal/auth"
	"devhub/internal/models"
	"devhub/internal/observability"
	"devhub/internal/repository"
)

const msgInvalidCredentials = "Invalid credentials"

type UserService struct {
	userRepo repository.UserRepository
	tokens   *auth.Tokens
	log      *slog.Logger
}

func NewUserService(userRepo repository.UserRepository, tokens *auth.Tokens, log *slog.Logger) *UserService {
	return &UserService{userRepo: userRepo, tokens: tokens, log: log}
}

// Gravatar returns the avatar URL for email.
func Gravatar(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=200&r=pg&d=mm", hex.EncodeToString(sum[:]))
}

// Register creates an account and returns a session token for it.
func (s *UserService) Register(ctx context.Context, in RegisterRequest) (string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", models.NewConflictError("User already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: hash,
		Avatar:   Gravatar(email),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", err
	}
	s.log.InfoContext(ctx, "user registered", slog.String("registered_user_id", user.ID))

	return s.issue(user.ID)
}

// Login verifies credentials and returns a session token. Unknown emails
// and wrong passwords fail identically.
func (s *UserService) Login(ctx context.Context, in LoginRequest) (string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil || !auth.CheckPassword(user.Password, in.Password) {
		observability.AuthFailures.WithLabelValues("credentials").Inc()
		return "", models.NewValidationError(msgInvalidCredentials)
	}
	return s.issue(user.ID)
}

// Me returns the account of userID.
func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *UserService) issue(userID string) (string, error) {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return token, nil
}

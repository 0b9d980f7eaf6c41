// Package repository implements the document store behind the services.
// Every store has a GORM (PostgreSQL) and a MongoDB implementation.
package repository

import (
	"context"
	"errors"
	"strings"

	"devhub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store driver labels used in metrics and spans.
const (
	driverPostgres = "postgresql"
	driverMongo    = "mongodb"
)

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail returns nil, nil when no account uses email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.User, error)
	Delete(ctx context.Context, id string) error
}

// ProfileMutation edits a loaded profile in memory before a versioned write.
type ProfileMutation func(p *models.Profile) error

// ProfileRepository persists one profile per user.
type ProfileRepository interface {
	GetByUser(ctx context.Context, userID string) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	// Upsert creates or sparsely updates the user's profile in one atomic
	// store operation keyed on the unique user reference.
	Upsert(ctx context.Context, userID string, fields models.ProfileFields) (*models.Profile, error)
	// Update loads the profile, applies mutate and writes it back only if
	// nobody else wrote in between. A lost race returns a STALE_WRITE error.
	Update(ctx context.Context, userID string, mutate ProfileMutation) (*models.Profile, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// PostMutation edits a loaded post in memory before a versioned write.
type PostMutation func(p *models.Post) error

// PostRepository persists feed posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	// List returns every post, most recent first.
	List(ctx context.Context) ([]models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	Update(ctx context.Context, id string, mutate PostMutation) (*models.Post, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Users    UserRepository
	Profiles ProfileRepository
	Posts    PostRepository
	// Ping reports whether the backend is reachable.
	Ping func(ctx context.Context) error
}

// validID reports whether id can name a stored document. Anything that is
// not a UUID is treated as absent rather than as a bad request.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// isUniqueViolation reports whether err is a unique constraint violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	// SQLite reports constraint failures as plain text.
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func attachUserRefs(ctx context.Context, users UserRepository, profiles []*models.Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.UserID)
	}
	found, err := users.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[string]*models.User, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}
	for _, p := range profiles {
		if u, ok := byID[p.UserID]; ok {
			p.User = u.Ref()
		}
		p.Normalize()
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"time"

	"devhub/internal/models"
	"devhub/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a UserRepository backed by db.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (err error) {
	ctx, span := observability.StartStoreSpan(ctx, driverPostgres, "create", "users")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery(driverPostgres, "create", "users")()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Date.IsZero() {
		user.Date = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, models.NewNotFoundError("User not found")
	}
	defer observability.TrackQuery(driverPostgres, "get", "users")()

	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User not found")
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	defer observability.TrackQuery(driverPostgres, "get", "users")()

	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) ListByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	defer observability.TrackQuery(driverPostgres, "list", "users")()

	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return models.NewNotFoundError("User not found")
	}
	defer observability.TrackQuery(driverPostgres, "delete", "users")()

	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

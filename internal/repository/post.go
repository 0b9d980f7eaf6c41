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

// postColumns are written back by a versioned post update.
var postColumns = []string{"text", "likes", "comments", "version"}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a PostRepository backed by db.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, span := observability.StartStoreSpan(ctx, driverPostgres, "create", "posts")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery(driverPostgres, "create", "posts")()

	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.Date.IsZero() {
		post.Date = time.Now().UTC()
	}
	post.Version = 1
	post.Normalize()

	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) List(ctx context.Context) ([]models.Post, error) {
	defer observability.TrackQuery(driverPostgres, "list", "posts")()

	posts := []models.Post{}
	if err := r.db.WithContext(ctx).Order("date DESC").Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for i := range posts {
		posts[i].Normalize()
	}
	return posts, nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if !validID(id) {
		return nil, models.NewNotFoundError("Post not found")
	}
	defer observability.TrackQuery(driverPostgres, "get", "posts")()

	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post not found")
		}
		return nil, models.NewInternalError(err)
	}
	post.Normalize()
	return &post, nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return models.NewNotFoundError("Post not found")
	}
	defer observability.TrackQuery(driverPostgres, "delete", "posts")()

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Post{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post not found")
	}
	return nil
}

func (r *postRepository) Update(ctx context.Context, id string, mutate PostMutation) (_ *models.Post, err error) {
	ctx, span := observability.StartStoreSpan(ctx, driverPostgres, "update", "posts")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery(driverPostgres, "update", "posts")()

	post, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	loaded := post.Version
	if err := mutate(post); err != nil {
		return nil, err
	}
	post.Version = loaded + 1

	res := r.db.WithContext(ctx).Model(post).
		Select(postColumns).
		Where("version = ?", loaded).
		Updates(post)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		observability.StaleWrites.WithLabelValues("posts").Inc()
		return nil, models.NewStaleWriteError("posts")
	}
	post.Normalize()
	return post, nil
}

// NewGormStore wires the PostgreSQL repositories over db.
func NewGormStore(db *gorm.DB) *Store {
	users := NewUserRepository(db)
	return &Store{
		Users:    users,
		Profiles: NewProfileRepository(db, users),
		Posts:    NewPostRepository(db),
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
}

package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"devhub/internal/models"
	"devhub/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn     func(context.Context, *models.User) error
	getByIDFn    func(context.Context, string) (*models.User, error)
	getByEmailFn func(context.Context, string) (*models.User, error)
	listByIDsFn  func(context.Context, []string) ([]models.User, error)
	deleteFn     func(context.Context, string) error
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) ListByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	return s.listByIDsFn(ctx, ids)
}
func (s *userRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

// usersByID returns a stub that resolves GetByID from users.
func usersByID(users ...models.User) *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id string) (*models.User, error) {
			for i := range users {
				if users[i].ID == id {
					u := users[i]
					return &u, nil
				}
			}
			return nil, models.NewNotFoundError("User not found")
		},
	}
}

// profileRepoStub is a stub for repository.ProfileRepository.
type profileRepoStub struct {
	getByUserFn    func(context.Context, string) (*models.Profile, error)
	listFn         func(context.Context) ([]models.Profile, error)
	upsertFn       func(context.Context, string, models.ProfileFields) (*models.Profile, error)
	updateFn       func(context.Context, string, repository.ProfileMutation) (*models.Profile, error)
	deleteByUserFn func(context.Context, string) error
}

func (s *profileRepoStub) GetByUser(ctx context.Context, userID string) (*models.Profile, error) {
	return s.getByUserFn(ctx, userID)
}
func (s *profileRepoStub) List(ctx context.Context) ([]models.Profile, error) {
	return s.listFn(ctx)
}
func (s *profileRepoStub) Upsert(ctx context.Context, userID string, fields models.ProfileFields) (*models.Profile, error) {
	return s.upsertFn(ctx, userID, fields)
}
func (s *profileRepoStub) Update(ctx context.Context, userID string, mutate repository.ProfileMutation) (*models.Profile, error) {
	return s.updateFn(ctx, userID, mutate)
}
func (s *profileRepoStub) DeleteByUser(ctx context.Context, userID string) error {
	return s.deleteByUserFn(ctx, userID)
}

// storedProfile returns a stub whose Update applies mutations to profile.
func storedProfile(profile *models.Profile) *profileRepoStub {
	return &profileRepoStub{
		getByUserFn: func(_ context.Context, userID string) (*models.Profile, error) {
			if profile == nil || profile.UserID != userID {
				return nil, models.NewNotFoundError("Profile not found")
			}
			cp := *profile
			return &cp, nil
		},
		updateFn: func(_ context.Context, userID string, mutate repository.ProfileMutation) (*models.Profile, error) {
			if profile == nil || profile.UserID != userID {
				return nil, models.NewNotFoundError("Profile not found")
			}
			cp := *profile
			if err := mutate(&cp); err != nil {
				return nil, err
			}
			cp.Version++
			*profile = cp
			return &cp, nil
		},
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn  func(context.Context, *models.Post) error
	listFn    func(context.Context) ([]models.Post, error)
	getByIDFn func(context.Context, string) (*models.Post, error)
	deleteFn  func(context.Context, string) error
	updateFn  func(context.Context, string, repository.PostMutation) (*models.Post, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) List(ctx context.Context) ([]models.Post, error) {
	return s.listFn(ctx)
}
func (s *postRepoStub) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) Update(ctx context.Context, id string, mutate repository.PostMutation) (*models.Post, error) {
	return s.updateFn(ctx, id, mutate)
}

// storedPost returns a stub serving a single post.
func storedPost(post *models.Post) *postRepoStub {
	get := func(_ context.Context, id string) (*models.Post, error) {
		if post == nil || post.ID != id {
			return nil, models.NewNotFoundError("Post not found")
		}
		cp := *post
		return &cp, nil
	}
	return &postRepoStub{
		getByIDFn: get,
		deleteFn: func(ctx context.Context, id string) error {
			if _, err := get(ctx, id); err != nil {
				return err
			}
			post = nil
			return nil
		},
		updateFn: func(ctx context.Context, id string, mutate repository.PostMutation) (*models.Post, error) {
			cp, err := get(ctx, id)
			if err != nil {
				return nil, err
			}
			if err := mutate(cp); err != nil {
				return nil, err
			}
			cp.Version++
			*post = *cp
			return cp, nil
		},
	}
}

// feedRecorder collects published feed events.
type feedRecorder struct {
	mu     sync.Mutex
	events []models.FeedEvent
}

func (r *feedRecorder) PublishFeed(_ context.Context, event models.FeedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *feedRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

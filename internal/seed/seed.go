package seed

import (
	"context"
	"fmt"
	"log/slog"

	"devhub/internal/models"
	"devhub/internal/repository"
	"devhub/internal/service"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	MaxLikes    int
	MaxComments int
	Seed        int64
}

// Summary counts what a run created.
type Summary struct {
	Users       int
	Profiles    int
	Posts       int
	Likes       int
	Comments    int
	SkippedDups int
}

// Seeder writes demo data through the same services the API uses, so
// seeded documents satisfy every validation and versioning rule.
type Seeder struct {
	store    *repository.Store
	users    *service.UserService
	profiles *service.ProfileService
	posts    *service.PostService
	factory  *Factory
	log      *slog.Logger
}

// NewSeeder builds a Seeder over store.
func NewSeeder(store *repository.Store, users *service.UserService, profiles *service.ProfileService, posts *service.PostService, opts Options, log *slog.Logger) *Seeder {
	return &Seeder{
		store:    store,
		users:    users,
		profiles: profiles,
		posts:    posts,
		factory:  NewFactory(opts.Seed),
		log:      log,
	}
}

// Run creates opts.NumUsers accounts with profiles and opts.NumPosts posts
// with random likes and comments.
func (s *Seeder) Run(ctx context.Context, opts Options) (Summary, error) {
	var sum Summary

	userIDs, err := s.seedUsers(ctx, opts.NumUsers, &sum)
	if err != nil {
		return sum, err
	}
	if len(userIDs) == 0 {
		return sum, nil
	}

	for i := 0; i < opts.NumPosts; i++ {
		author := userIDs[s.factory.Pick(len(userIDs))]
		post, err := s.posts.CreatePost(ctx, author, s.factory.PostText())
		if err != nil {
			return sum, fmt.Errorf("create post: %w", err)
		}
		sum.Posts++

		if err := s.engage(ctx, post.ID, userIDs, opts, &sum); err != nil {
			return sum, err
		}
	}

	s.log.Info("seeding complete",
		slog.Int("users", sum.Users),
		slog.Int("profiles", sum.Profiles),
		slog.Int("posts", sum.Posts),
		slog.Int("likes", sum.Likes),
		slog.Int("comments", sum.Comments),
	)
	return sum, nil
}

func (s *Seeder) seedUsers(ctx context.Context, n int, sum *Summary) ([]string, error) {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		req := s.factory.Register()
		if _, err := s.users.Register(ctx, req); err != nil {
			if models.IsCode(err, models.CodeConflict) {
				sum.SkippedDups++
				continue
			}
			return ids, fmt.Errorf("register %s: %w", req.Email, err)
		}
		user, err := s.store.Users.GetByEmail(ctx, req.Email)
		if err != nil || user == nil {
			return ids, fmt.Errorf("load seeded user %s: %w", req.Email, err)
		}
		ids = append(ids, user.ID)
		sum.Users++

		if err := s.seedProfile(ctx, user.ID); err != nil {
			return ids, err
		}
		sum.Profiles++
	}
	return ids, nil
}

func (s *Seeder) seedProfile(ctx context.Context, userID string) error {
	if _, err := s.profiles.UpsertProfile(ctx, userID, s.factory.Profile().Fields()); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	jobs := s.factory.Pick(3)
	for j := 0; j < jobs; j++ {
		entry, err := s.factory.Experience(j == jobs-1 && s.factory.Chance(50)).Entry()
		if err != nil {
			return err
		}
		if _, err := s.profiles.AddExperience(ctx, userID, entry); err != nil {
			return fmt.Errorf("add experience: %w", err)
		}
	}

	if s.factory.Chance(70) {
		entry, err := s.factory.Education().Entry()
		if err != nil {
			return err
		}
		if _, err := s.profiles.AddEducation(ctx, userID, entry); err != nil {
			return fmt.Errorf("add education: %w", err)
		}
	}
	return nil
}

func (s *Seeder) engage(ctx context.Context, postID string, userIDs []string, opts Options, sum *Summary) error {
	likes := 0
	if opts.MaxLikes > 0 {
		likes = s.factory.Pick(opts.MaxLikes + 1)
	}
	for i := 0; i < likes; i++ {
		_, err := s.posts.LikePost(ctx, userIDs[s.factory.Pick(len(userIDs))], postID)
		switch {
		case err == nil:
			sum.Likes++
		case models.IsCode(err, models.CodeConflict):
			// Same user drawn twice.
		default:
			return fmt.Errorf("like post: %w", err)
		}
	}

	comments := 0
	if opts.MaxComments > 0 {
		comments = s.factory.Pick(opts.MaxComments + 1)
	}
	for i := 0; i < comments; i++ {
		author := userIDs[s.factory.Pick(len(userIDs))]
		if _, err := s.posts.AddComment(ctx, author, postID, s.factory.CommentText()); err != nil {
			return fmt.Errorf("add comment: %w", err)
		}
		sum.Comments++
	}
	return nil
}

package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"devhub/internal/models"
	"devhub/internal/repository"

	"github.com/google/uuid"
)

const (
	msgNotAuthorized   = "User not authorized"
	msgAlreadyLiked    = "Post already liked"
	msgNotLiked        = "Post not yet been liked"
	msgCommentNotFound = "Comment does not exist"
)

// FeedPublisher receives an event after every successful post mutation.
// Publishing is best-effort.
type FeedPublisher interface {
	PublishFeed(ctx context.Context, event models.FeedEvent)
}

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	feed     FeedPublisher
	log      *slog.Logger
	now      func() time.Time
}

// NewPostService returns a PostService. feed may be nil.
func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	feed FeedPublisher,
	log *slog.Logger,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		feed:     feed,
		log:      log,
		now:      time.Now,
	}
}

// CreatePost stores text as a new post by userID, copying the author's
// name and avatar onto it.
func (s *PostService) CreatePost(ctx context.Context, userID, text string) (*models.Post, error) {
	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID: author.ID,
		Text:   strings.TrimSpace(text),
		Name:   author.Name,
		Avatar: author.Avatar,
		Date:   s.now().UTC(),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	post.Normalize()

	s.publish(ctx, models.FeedPostCreated, post.ID, userID, post)
	return post, nil
}

// ListPosts returns every post, most recent first.
func (s *PostService) ListPosts(ctx context.Context) ([]models.Post, error) {
	return s.postRepo.List(ctx)
}

func (s *PostService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID)
}

// DeletePost removes a post owned by userID.
func (s *PostService) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError(msgNotAuthorized)
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	s.publish(ctx, models.FeedPostDeleted, postID, userID, nil)
	return nil
}

// LikePost adds userID to the head of the like list. A post is liked at
// most once per user.
func (s *PostService) LikePost(ctx context.Context, userID, postID string) ([]models.Like, error) {
	post, err := s.postRepo.Update(ctx, postID, func(p *models.Post) error {
		if p.LikedBy(userID) {
			return models.NewConflictError(msgAlreadyLiked)
		}
		p.Likes = append([]models.Like{{ID: uuid.NewString(), UserID: userID}}, p.Likes...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	post.Normalize()

	s.publish(ctx, models.FeedPostLiked, postID, userID, post.Likes)
	return post.Likes, nil
}

// UnlikePost removes userID's like.
func (s *PostService) UnlikePost(ctx context.Context, userID, postID string) ([]models.Like, error) {
	post, err := s.postRepo.Update(ctx, postID, func(p *models.Post) error {
		for i, l := range p.Likes {
			if l.UserID == userID {
				p.Likes = append(p.Likes[:i:i], p.Likes[i+1:]...)
				return nil
			}
		}
		return models.NewConflictError(msgNotLiked)
	})
	if err != nil {
		return nil, err
	}
	post.Normalize()

	s.publish(ctx, models.FeedPostUnliked, postID, userID, post.Likes)
	return post.Likes, nil
}

// AddComment prepends a comment by userID to the post.
func (s *PostService) AddComment(ctx context.Context, userID, postID, text string) ([]models.Comment, error) {
	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:     uuid.NewString(),
		UserID: author.ID,
		Text:   strings.TrimSpace(text),
		Name:   author.Name,
		Avatar: author.Avatar,
		Date:   s.now().UTC(),
	}
	post, err := s.postRepo.Update(ctx, postID, func(p *models.Post) error {
		p.Comments = append([]models.Comment{comment}, p.Comments...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	post.Normalize()

	s.publish(ctx, models.FeedCommentAdded, postID, userID, comment)
	return post.Comments, nil
}

// RemoveComment deletes a comment written by userID.
func (s *PostService) RemoveComment(ctx context.Context, userID, postID, commentID string) ([]models.Comment, error) {
	post, err := s.postRepo.Update(ctx, postID, func(p *models.Post) error {
		for i, c := range p.Comments {
			if c.ID != commentID {
				continue
			}
			if c.UserID != userID {
				return models.NewForbiddenError(msgNotAuthorized)
			}
			p.Comments = append(p.Comments[:i:i], p.Comments[i+1:]...)
			return nil
		}
		return models.NewNotFoundError(msgCommentNotFound)
	})
	if err != nil {
		return nil, err
	}
	post.Normalize()

	s.publish(ctx, models.FeedCommentRemoved, postID, userID, map[string]string{"comment_id": commentID})
	return post.Comments, nil
}

func (s *PostService) publish(ctx context.Context, eventType, postID, userID string, payload any) {
	if s.feed == nil {
		return
	}
	s.feed.PublishFeed(ctx, models.FeedEvent{
		Type:    eventType,
		PostID:  postID,
		UserID:  userID,
		Payload: payload,
		At:      s.now().UTC(),
	})
}

package models

import "time"

// Feed event types published after post mutations.
const (
	FeedPostCreated    = "post_created"
	FeedPostDeleted    = "post_deleted"
	FeedPostLiked      = "post_liked"
	FeedPostUnliked    = "post_unliked"
	FeedCommentAdded   = "comment_added"
	FeedCommentRemoved = "comment_removed"
)

// FeedEvent is pushed to realtime feed subscribers.
type FeedEvent struct {
	Type    string    `json:"type"`
	PostID  string    `json:"post_id"`
	UserID  string    `json:"user_id"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

package models

import "time"

// Post is a feed entry. Likes and Comments are stored inline with the post
// and ordered newest first.
type Post struct {
	ID       string    `gorm:"primaryKey;type:varchar(36)" json:"_id" bson:"_id"`
	UserID   string    `gorm:"column:user_id;type:varchar(36);index;not null" json:"user" bson:"user"`
	Text     string    `gorm:"type:text;not null" json:"text" bson:"text"`
	Name     string    `json:"name" bson:"name"`
	Avatar   string    `json:"avatar" bson:"avatar"`
	Likes    []Like    `gorm:"serializer:json;type:jsonb" json:"likes" bson:"likes"`
	Comments []Comment `gorm:"serializer:json;type:jsonb" json:"comments" bson:"comments"`
	Date     time.Time `gorm:"index" json:"date" bson:"date"`
	Version  int64     `gorm:"not null;default:1" json:"-" bson:"version"`
}

// Like marks a user's like on a post.
type Like struct {
	ID     string `json:"_id" bson:"_id"`
	UserID string `json:"user" bson:"user"`
}

// Comment is a reply on a post. Name and Avatar are copied from the author
// when the comment is written.
type Comment struct {
	ID     string    `json:"_id" bson:"_id"`
	UserID string    `json:"user" bson:"user"`
	Text   string    `json:"text" bson:"text"`
	Name   string    `json:"name" bson:"name"`
	Avatar string    `json:"avatar" bson:"avatar"`
	Date   time.Time `json:"date" bson:"date"`
}

// Normalize replaces nil collections with empty ones so they encode as [].
func (p *Post) Normalize() {
	if p.Likes == nil {
		p.Likes = []Like{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
}

// LikedBy reports whether userID already likes the post.
func (p *Post) LikedBy(userID string) bool {
	for _, l := range p.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

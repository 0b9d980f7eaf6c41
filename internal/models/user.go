// Package models contains data structures for the application's domain models.
package models

import "time"

// User is a registered account.
type User struct {
	ID       string    `gorm:"primaryKey;type:varchar(36)" json:"_id" bson:"_id"`
	Name     string    `gorm:"not null" json:"name" bson:"name"`
	Email    string    `gorm:"uniqueIndex;not null" json:"email" bson:"email"`
	Password string    `gorm:"not null" json:"-" bson:"password"`
	Avatar   string    `json:"avatar" bson:"avatar"`
	Date     time.Time `json:"date" bson:"date"`
}

// UserRef is the slice of a user embedded in profile responses.
type UserRef struct {
	ID     string `json:"_id" bson:"_id"`
	Name   string `json:"name" bson:"name"`
	Avatar string `json:"avatar" bson:"avatar"`
}

// Ref returns the public reference for u.
func (u *User) Ref() *UserRef {
	return &UserRef{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}

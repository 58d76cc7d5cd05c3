package models

import "time"

// Post is a blog entry owned by the user that created it.
type Post struct {
	ID        string    `json:"postId"`
	UserID    string    `json:"userId"`
	Nickname  string    `json:"nickname"` // Owner's nickname at creation time
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

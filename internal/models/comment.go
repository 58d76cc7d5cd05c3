package models

import "time"

// Comment is a reply attached to a post.
type Comment struct {
	ID        string    `json:"commentId"`
	PostID    string    `json:"postId"`
	UserID    string    `json:"userId"`
	Nickname  string    `json:"nickname"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

package models

import "time"

// User represents a user account in the system.
type User struct {
	ID           string    `json:"userId"`
	Nickname     string    `json:"nickname"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

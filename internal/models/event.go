package models

import "time"

// Event represents a loggable action in the system.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g., "post.create", "auth.login.fail"
	Level     string    `json:"level"` // e.g., "info", "warn", "error"
	Message   string    `json:"message"`
	UserID    *string   `json:"userId,omitempty"`    // Nullable for anonymous actions
	SubjectID *string   `json:"subjectId,omitempty"` // Post or comment the event is about
	CreatedAt time.Time `json:"createdAt"`
}

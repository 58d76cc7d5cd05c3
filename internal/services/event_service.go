package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/blog-be/internal/models"
	"github.com/rs/zerolog/log"
)

// Event levels.
const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// EventPublisher pushes recorded events to live subscribers.
type EventPublisher interface {
	Publish(event models.Event)
}

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(ctx context.Context, eventType, level, message string, userID, subjectID *string) error
	GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error)
	PruneEvents(ctx context.Context, before time.Time) (int64, error)
}

// EventService provides business logic for event management.
type EventService struct {
	db        *sql.DB
	publisher EventPublisher
}

// NewEventService creates a new EventService. publisher may be nil.
func NewEventService(db *sql.DB, publisher EventPublisher) *EventService {
	return &EventService{db: db, publisher: publisher}
}

// CreateEvent logs a new event to the database and publishes it.
func (s *EventService) CreateEvent(ctx context.Context, eventType, level, message string, userID, subjectID *string) error {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Level:     level,
		Message:   message,
		UserID:    userID,
		SubjectID: subjectID,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (id, type, level, message, user_id, subject_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.UserID, event.SubjectID, event.CreatedAt)
	if err != nil {
		return internal(err, "failed to record event")
	}

	if s.publisher != nil {
		s.publisher.Publish(event)
	}
	return nil
}

// GetRecentEvents retrieves the most recent events from the database.
func (s *EventService) GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, type, level, message, user_id, subject_id, created_at FROM events ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, internal(err, "failed to query events")
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.UserID, &event.SubjectID, &event.CreatedAt); err != nil {
			return nil, internal(err, "failed to scan event")
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, internal(err, "failed to read events")
	}
	return events, nil
}

// PruneEvents deletes events created before the cutoff.
func (s *EventService) PruneEvents(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE created_at < ?", before.UTC())
	if err != nil {
		return 0, internal(err, "failed to prune events")
	}
	return res.RowsAffected()
}

// recordEvent is used by the other services; a failure to record never
// fails the operation that triggered it.
func recordEvent(ctx context.Context, events EventServiceProvider, eventType, level, message string, userID, subjectID *string) {
	if events == nil {
		return
	}
	if err := events.CreateEvent(ctx, eventType, level, message, userID, subjectID); err != nil {
		log.Warn().Err(err).Str("type", eventType).Msg("Failed to record event")
	}
}

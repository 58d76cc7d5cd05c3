package handlers

import (
	"context"
	"time"

	"github.com/isdelr/blog-be/internal/models"
)

type stubEvents struct {
	lastLimit int
}

func (s *stubEvents) CreateEvent(context.Context, string, string, string, *string, *string) error {
	return nil
}

func (s *stubEvents) GetRecentEvents(_ context.Context, limit int) ([]models.Event, error) {
	s.lastLimit = limit
	return []models.Event{}, nil
}

func (s *stubEvents) PruneEvents(context.Context, time.Time) (int64, error) {
	return 0, nil
}

package services_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/isdelr/blog-be/internal/database"
	"github.com/isdelr/blog-be/internal/models"
	"github.com/isdelr/blog-be/internal/services"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
}

func (p *recordingPublisher) Publish(event models.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	db        *sql.DB
	publisher *recordingPublisher
	events    *services.EventService
	users     *services.UserService
	posts     *services.PostService
	comments  *services.CommentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	pub := &recordingPublisher{}
	events := services.NewEventService(db, pub)
	return &fixture{
		db:        db,
		publisher: pub,
		events:    events,
		users:     services.NewUserService(db, events),
		posts:     services.NewPostService(db, events),
		comments:  services.NewCommentService(db, events),
	}
}

func (f *fixture) signup(t *testing.T, nickname, password string) models.User {
	t.Helper()
	user, err := f.users.Signup(context.Background(), nickname, password, password)
	require.NoError(t, err)
	return user
}

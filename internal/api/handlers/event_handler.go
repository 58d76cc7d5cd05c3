package handlers

import (
	"net/http"
	"strconv"

	"github.com/isdelr/blog-be/internal/services"
)

const (
	defaultEventLimit = 20
	maxEventLimit     = 100
)

// EventHandler handles HTTP requests related to activity events.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// GetRecent handles the request to get recent activity.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultEventLimit
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	events, err := h.service.GetRecentEvents(r.Context(), limit)
	if err != nil {
		writeError(w, r, err, "failed to load events", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

package websocket

import (
	"context"
	"encoding/json"

	"github.com/isdelr/blog-be/internal/models"
	"github.com/rs/zerolog/log"
)

// broadcastBuffer bounds how many messages may queue while the hub is busy.
const broadcastBuffer = 256

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	// Registered clients. Only touched by Run.
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	// Closed when Run returns.
	done chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop and blocks until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			log.Info().Int("total_clients", len(h.clients)).Msg("Client connected")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop it rather than stall everyone.
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Register adds a client. It is a no-op once the hub has stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client. It is a no-op once the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish broadcasts an event to every connected client without blocking
// the caller. Events are dropped when the queue is full.
func (h *Hub) Publish(event models.Event) {
	msg, err := json.Marshal(Message{Action: ActionEvent, Payload: event})
	if err != nil {
		log.Error().Err(err).Str("event_id", event.ID).Msg("Failed to encode event for broadcast")
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		log.Warn().Str("event_id", event.ID).Msg("Broadcast queue full, dropping event")
	}
}

package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event is a realtime message pushed to connected clients.
type Event struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// Hub manages WebSocket connections for house members and broadcasts
// domain events (bookings, maintenance, checklists) to all of them.
// It implements EventSink.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*websocket.Conn),
	}
}

// Register registers a connection for a user. A user keeps at most one
// connection; an existing one is closed and replaced.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.connections[userID]; ok {
		existing.Close()
	}
	h.connections[userID] = conn

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes a user's connection if it is the given one.
func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.connections[userID]; ok && current == conn {
		current.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// IsOnline checks if a user has a live connection.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.connections[userID]
	return ok
}

// SendToUser sends an event to a specific user.
func (h *Hub) SendToUser(userID string, event Event) error {
	h.mu.RLock()
	conn, ok := h.connections[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.Unregister(userID, conn)
		return fmt.Errorf("failed to send event: %w", err)
	}

	return nil
}

// Broadcast sends an event to every connected user. Implements EventSink;
// delivery failures drop the broken connection and are otherwise ignored.
func (h *Hub) Broadcast(eventType string, data any) {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("Failed to marshal broadcast event")
		return
	}

	h.mu.RLock()
	conns := make(map[string]*websocket.Conn, len(h.connections))
	for userID, conn := range h.connections {
		conns[userID] = conn
	}
	h.mu.RUnlock()

	for userID, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Error().Err(err).Str("user_id", userID).Str("type", eventType).Msg("Failed to broadcast event")
			h.Unregister(userID, conn)
		}
	}
}

// Close shuts down every connection, for graceful server shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, conn := range h.connections {
		conn.Close()
		delete(h.connections, userID)
	}
}

package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// liveMessage is the envelope broadcast to live clients.
type liveMessage struct {
	Kind      string `json:"kind"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

// LiveHandler broadcasts session phases and saved workouts via WebSocket.
type LiveHandler struct {
	clients map[*websocket.Conn]bool
	events  chan liveMessage
	mu      sync.RWMutex
}

// NewLiveHandler creates a new LiveHandler and starts its broadcast loop.
func NewLiveHandler() *LiveHandler {
	h := &LiveHandler{
		clients: make(map[*websocket.Conn]bool),
		events:  make(chan liveMessage, 64),
	}
	go h.broadcast()
	return h
}

// Publish queues an event for delivery to all connected clients.
// Events are dropped when the queue is full rather than blocking a session.
func (h *LiveHandler) Publish(kind string, data any) {
	msg := liveMessage{
		Kind:      kind,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
	select {
	case h.events <- msg:
	default:
	}
}

// ClientCount returns the number of connected clients.
func (h *LiveHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast delivers queued events to all connected clients.
func (h *LiveHandler) broadcast() {
	for msg := range h.events {
		h.mu.RLock()
		if len(h.clients) == 0 {
			h.mu.RUnlock()
			continue
		}

		payload, err := json.Marshal(msg)
		if err != nil {
			h.mu.RUnlock()
			continue
		}

		for conn := range h.clients {
			conn.WriteMessage(websocket.TextMessage, payload)
		}
		h.mu.RUnlock()
	}
}

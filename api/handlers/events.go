package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Event is a lifecycle notification pushed to connected dashboards
type Event struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	CauseID string `json:"causeId,omitempty"`
	At      string `json:"at"`
}

// EventHub tracks connected dashboard sockets and fans events out to all of
// them
type EventHub struct {
	clients map[string]*websocket.Conn
	mutex   sync.Mutex
}

// NewEventHub returns an empty hub
func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[string]*websocket.Conn),
	}
}

// Broadcast sends an event to every connected client. Dead connections are
// dropped on write failure. Safe to call on a nil hub.
func (h *EventHub) Broadcast(e Event) {
	if h == nil {
		return
	}
	e.At = time.Now().UTC().Format(time.RFC3339)

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for id, conn := range h.clients {
		if err := conn.WriteJSON(e); err != nil {
			zap.S().Debugw("dropping dead event client", "client", id, "error", err)
			delete(h.clients, id)
			conn.Close()
		}
	}
}

// Events exported for testing purposes
type Events struct {
	Hub *EventHub
}

// ServeWS upgrades the connection and keeps it registered until the client
// goes away
func (e Events) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade failed", "error", err)
		return
	}

	clientID := uuid.New().String()
	e.Hub.mutex.Lock()
	e.Hub.clients[clientID] = conn
	e.Hub.mutex.Unlock()
	zap.S().Infow("event client connected", "client", clientID)

	conn.SetCloseHandler(func(code int, text string) error {
		e.Hub.mutex.Lock()
		delete(e.Hub.clients, clientID)
		e.Hub.mutex.Unlock()
		zap.S().Infow("event client disconnected", "client", clientID)
		return nil
	})

	// drain reads to notice disconnects
	for {
		if _, _, err := conn.NextReader(); err != nil {
			e.Hub.mutex.Lock()
			delete(e.Hub.clients, clientID)
			e.Hub.mutex.Unlock()
			conn.Close()
			break
		}
	}
}

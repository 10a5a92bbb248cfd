package server

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/arcade/internal/app"
)

// writeWait bounds a single WebSocket write so one stuck client cannot hold
// its subscription forever.
const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// FramesHandler streams every frame's result and snapshot to WebSocket
// clients as JSON.
type FramesHandler struct {
	app     *app.App
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewFramesHandler creates a new FramesHandler publishing a's updates.
func NewFramesHandler(a *app.App) *FramesHandler {
	return &FramesHandler{
		app:     a,
		clients: make(map[*websocket.Conn]bool),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *FramesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	updates, unsubscribe := h.app.Subscribe()
	defer unsubscribe()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// The read loop only notices the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case u := <-updates:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(u); err != nil {
				return
			}
		}
	}
}

// Clients returns the number of connected clients.
func (h *FramesHandler) Clients() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll disconnects every client.
func (h *FramesHandler) CloseAll() {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
		conn.Close()
	}
}

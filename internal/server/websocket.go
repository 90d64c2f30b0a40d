package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/tandemview/tandem/internal/logging"
)

// writeWait bounds how long one broadcast write may block per client.
const writeWait = 10 * time.Second

// ReloadMessage is sent to connected browsers when a rebuild lands.
type ReloadMessage struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// ReloadHub tracks live-reload clients and broadcasts reload messages when
// a manifest rebuild is observed. Development-mode only.
type ReloadHub struct {
	logger logging.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewReloadHub creates an empty hub.
func NewReloadHub(logger logging.Logger) *ReloadHub {
	return &ReloadHub{
		logger:  logger.WithComponent("reload-hub"),
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Handle upgrades the request and keeps the connection registered until the
// client goes away.
func (h *ReloadHub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		_ = conn.CloseNow()
	}()

	// The client never sends meaningful data; reading serves to detect
	// disconnects.
	for {
		if _, _, err := conn.Read(r.Context()); err != nil {
			return
		}
	}
}

// Broadcast sends a reload message to every connected client. Clients that
// fail to accept the write are dropped.
func (h *ReloadHub) Broadcast(ctx context.Context) {
	payload, err := json.Marshal(ReloadMessage{Type: "reload", Timestamp: time.Now()})
	if err != nil {
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		writeCtx, cancel := context.WithTimeout(ctx, writeWait)
		err := conn.Write(writeCtx, websocket.MessageText, payload)
		cancel()
		if err != nil {
			h.logger.Debug(ctx, "dropping stale reload client", "error", err.Error())
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			_ = conn.CloseNow()
		}
	}

	h.logger.Debug(ctx, "reload broadcast", "clients", len(conns))
}

// ClientCount returns the number of connected clients.
func (h *ReloadHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

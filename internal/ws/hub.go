// v3
// internal/ws/hub.go
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"urbantech/twin/internal/model"
	"urbantech/twin/internal/observability"
)

// Hub fans each tick's output out to connected WebSocket clients. A
// newly connected client immediately receives the latest payload so the
// dashboard renders without waiting for the next tick.
type Hub struct {
	lg      *slog.Logger
	metrics *observability.Metrics

	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	register  chan *websocket.Conn
	remove    chan *websocket.Conn
	broadcast chan []byte

	mu     sync.RWMutex
	latest []byte
}

func NewHub(lg *slog.Logger, metrics *observability.Metrics) *Hub {
	h := &Hub{
		lg:      lg,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:   make(map[*websocket.Conn]bool),
		register:  make(chan *websocket.Conn),
		remove:    make(chan *websocket.Conn),
		broadcast: make(chan []byte, 16),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.clients[conn] = true
			h.metrics.WSClientConnected()
		case conn := <-h.remove:
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
				h.metrics.WSClientDisconnected()
			}
		case msg := <-h.broadcast:
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					h.lg.Warn("websocket write failed", "error", err)
					delete(h.clients, conn)
					conn.Close()
					h.metrics.WSClientDisconnected()
				}
			}
		}
	}
}

// Publish serializes the tick output synchronously and queues the bytes
// for broadcast, so the hub never holds a reference into a snapshot the
// simulator is about to rewrite.
func (h *Hub) Publish(_ context.Context, out model.TickOutput) error {
	data, err := json.Marshal(out)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.latest = data
	h.mu.Unlock()

	select {
	case h.broadcast <- data:
	default:
		// Drop the frame rather than stall the tick pipeline behind
		// slow clients; the next tick supersedes it anyway.
		h.lg.Warn("broadcast queue full, frame dropped")
	}
	return nil
}

func (h *Hub) Name() string { return "websocket" }

// Handle upgrades the request and serves the client until it closes.
// Inbound messages are drained and ignored; the stream is one-way.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.lg.Error("websocket upgrade failed", "error", err)
		return
	}

	h.register <- conn

	h.mu.RLock()
	latest := h.latest
	h.mu.RUnlock()
	if latest != nil {
		if err := conn.WriteMessage(websocket.TextMessage, latest); err != nil {
			h.lg.Warn("initial frame write failed", "error", err)
		}
	}

	go func() {
		defer func() { h.remove <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.lg.Warn("websocket read error", "error", err)
				}
				return
			}
		}
	}()
}

// Package stream pushes live facility status updates over websockets. A
// single ticker drives recomputation so every connected client sees the same
// snapshot, and rollover writes happen once per tick rather than per client.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"warmap-server/internal/building"
	"warmap-server/internal/facility"
)

// StatusUpdate is one entry of the per-tick broadcast.
type StatusUpdate struct {
	BuildingID       string          `json:"building_id"`
	Status           building.Status `json:"status"`
	RemainingSeconds int64           `json:"remaining_seconds"`
	EndTime          int64           `json:"end_time"`
}

const (
	writeWait = 10 * time.Second

	// sendBuffer bounds per-client backlog; a client that falls this far
	// behind is dropped instead of stalling the broadcast.
	sendBuffer = 16
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type Hub struct {
	buildings *building.Service
	interval  time.Duration
	clock     func() time.Time
	logger    *slog.Logger
	upgrader  websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub(buildings *building.Service, interval time.Duration, clock func() time.Time) *Hub {
	if clock == nil {
		clock = time.Now
	}
	return &Hub{
		buildings: buildings,
		interval:  interval,
		clock:     clock,
		logger:    slog.With("component", "stream"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// CORS is enforced at the HTTP layer; the handshake itself
			// accepts any origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Handler upgrades the connection and registers the client for broadcasts.
func (h *Hub) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug("Stream client connected", "clients", count)

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) writePump(c *client) {
	for msg := range c.send {
		c.conn.SetWriteDeadline(h.clock().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.drop(c)
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
		h.clock().Add(time.Second))
	c.conn.Close()
}

// readPump discards inbound frames; the stream is one-way. It exists to
// notice closed connections promptly.
func (h *Hub) readPump(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.drop(c)
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
}

// Run drives the tick loop until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("Status stream started", "interval", h.interval)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case <-ticker.C:
			h.tick(ctx)
		}
	}
}

// tick recomputes statuses (persisting any cycle rollovers) and broadcasts
// the snapshot.
func (h *Hub) tick(ctx context.Context) {
	h.mu.Lock()
	empty := len(h.clients) == 0
	h.mu.Unlock()
	if empty {
		return
	}

	buildings, err := h.buildings.Refresh(ctx)
	if err != nil {
		h.logger.Error("Status refresh failed", "error", err)
		return
	}

	msg, err := json.Marshal(h.snapshot(buildings))
	if err != nil {
		h.logger.Error("Failed to encode status snapshot", "error", err)
		return
	}
	h.broadcast(msg)
}

func (h *Hub) snapshot(buildings []building.Building) []StatusUpdate {
	now := h.clock()
	updates := make([]StatusUpdate, 0, len(buildings))

	for _, b := range buildings {
		u := StatusUpdate{
			BuildingID: b.ID,
			Status:     b.Status,
		}
		switch b.Type {
		case building.TypeEngineeringStation:
			ts := facility.Calculate(b.ProtectionEndTime, now, nil)
			u.RemainingSeconds = ts.RemainingSeconds
			u.EndTime = ts.EndTime
		default:
			u.EndTime = b.FixedOpenTime
			if remaining := b.FixedOpenTime - now.Unix(); remaining > 0 {
				u.RemainingSeconds = remaining
			}
		}
		updates = append(updates, u)
	}
	return updates
}

func (h *Hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// Slow consumer: detach it rather than blocking the tick.
			delete(h.clients, c)
			close(c.send)
			c.conn.Close()
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.logger.Info("Status stream stopped")
}

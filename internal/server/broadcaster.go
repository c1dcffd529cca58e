package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/AJaySi/ALwrity-sub003/internal/observe"
	"github.com/AJaySi/ALwrity-sub003/models"
)

const (
	clientSendBuffer = 8
	writeWait        = 10 * time.Second
	pingPeriod       = 54 * time.Second
	pongWait         = 60 * time.Second
)

// client is one connected websocket dashboard.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans dashboard snapshots out to websocket clients. Slow clients are
// dropped rather than allowed to block the refresh loop.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	upgrader   websocket.Upgrader
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client, 16),
		unregister: make(chan *client, 16),
		broadcast:  make(chan []byte, 16),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()
			observe.ConnectedClients.Set(float64(count))
			log.Debug().Str("client", c.id).Int("clients", count).Msg("websocket client connected")

		case c := <-h.unregister:
			h.drop(c)

		case payload := <-h.broadcast:
			h.mu.RLock()
			targets := make([]*client, 0, len(h.clients))
			for c := range h.clients {
				targets = append(targets, c)
			}
			h.mu.RUnlock()

			for _, c := range targets {
				select {
				case c.send <- payload:
				default:
					log.Warn().Str("client", c.id).Msg("dropping slow websocket client")
					h.drop(c)
				}
			}
		}
	}
}

// Broadcast queues a snapshot for delivery to all clients. The snapshot is
// encoded once, not per client.
func (h *Hub) Broadcast(dash *models.Dashboard) {
	payload, err := json.Marshal(map[string]interface{}{
		"type": "dashboard",
		"data": dash,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to encode dashboard broadcast")
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		// The hub is backed up; the next snapshot supersedes this one anyway.
		log.Warn().Msg("broadcast queue full, snapshot skipped")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// detach asks the hub to drop a client without blocking; after shutdown
// the hub is gone and closing the connection is all that is left to do.
func (h *Hub) detach(c *client) {
	select {
	case h.unregister <- c:
	default:
		_ = c.conn.Close()
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	count := len(h.clients)
	h.mu.Unlock()
	if ok {
		close(c.send)
		_ = c.conn.Close()
		observe.ConnectedClients.Set(float64(count))
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()
	observe.ConnectedClients.Set(0)
}

// handleWebSocket upgrades the connection and registers the client. A new
// client immediately receives the current snapshot so it never starts from
// a blank dashboard.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, clientSendBuffer),
	}

	if dash := s.provider.Dashboard(); dash != nil {
		if payload, err := json.Marshal(map[string]interface{}{"type": "dashboard", "data": dash}); err == nil {
			c.send <- payload
		}
	}

	s.hub.register <- c
	go c.writePump(s.hub)
	go c.readPump(s.hub)
}

// writePump delivers queued payloads and keepalive pings to the client.
func (c *client) writePump(h *Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.detach(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.detach(c)
				return
			}
		}
	}
}

// readPump discards inbound messages; it exists to detect closes and to
// answer pings.
func (c *client) readPump(h *Hub) {
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.detach(c)
			return
		}
	}
}

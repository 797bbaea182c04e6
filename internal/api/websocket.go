package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/rackview-core/internal/infrastructure/config"
	"github.com/nerrad567/rackview-core/internal/infrastructure/logging"
)

// Event is the message shape pushed to every connected client.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub manages WebSocket clients and fans inventory events out to all
// of them. Every client receives every event; there is no subscription
// protocol on this channel.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	clients map[*WSClient]struct{}
	mu      sync.RWMutex
}

// WSClient represents a single connected WebSocket client.
type WSClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// sendBufferSize is the per-client outbound queue depth. A client that
// cannot drain this many messages is dropped rather than blocking the hub.
const sendBufferSize = 64

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect cross-origin in dev; CORS policy is
	// enforced at the HTTP layer for the REST surface.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewHub creates a WebSocket hub.
//
// Parameters:
//   - cfg: WebSocket settings (ping interval, message size limits)
//   - logger: structured logger
//
// Returns:
//   - *Hub: ready to Run
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:     cfg,
		logger:  logger.With("component", "ws_hub"),
		clients: make(map[*WSClient]struct{}),
	}
}

// Run blocks until ctx is cancelled, then disconnects all clients.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Register adds a client to the hub.
func (h *Hub) Register(c *WSClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", count)
}

// Unregister removes a client and closes its send channel exactly once.
func (h *Hub) Unregister(c *WSClient) {
	h.mu.Lock()
	_, existed := h.clients[c]
	if existed {
		delete(h.clients, c)
		close(c.send)
	}
	count := len(h.clients)
	h.mu.Unlock()
	if existed {
		h.logger.Debug("websocket client disconnected", "clients", count)
	}
}

// Publish broadcasts an event to every connected client. The payload is
// marshalled once and queued per client; slow clients are disconnected
// instead of delaying the rest.
//
// Publish satisfies the notifier contract of the inventory service: it
// is only invoked after the storage transaction has committed.
func (h *Hub) Publish(eventType string, payload any) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		h.logger.Error("failed to marshal websocket event", "type", eventType, "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*WSClient, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.trySend(data) {
			h.logger.Warn("websocket client send buffer full, dropping client")
			h.Unregister(c)
			//nolint:errcheck // Best-effort close of an already-stalled connection
			c.conn.Close()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// closeAll disconnects every client during shutdown.
func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		close(c.send)
		//nolint:errcheck // Shutdown path
		c.conn.Close()
	}
	h.clients = make(map[*WSClient]struct{})
	h.mu.Unlock()
	h.logger.Info("all websocket clients disconnected")
}

// trySend queues a message without blocking. Returns false if the
// client's buffer is full or its channel is already closed.
func (c *WSClient) trySend(data []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// handleWebSocket upgrades the HTTP connection and starts the client pumps.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	client := &WSClient{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	s.hub.Register(client)

	go client.writePump(s.cfgWS)
	go client.readPump(s.cfgWS)
}

// readPump drains inbound frames. Clients have nothing to say on this
// channel, but the read loop is what notices disconnects and answers
// control frames.
func (c *WSClient) readPump(cfg config.WebSocketConfig) {
	defer func() {
		c.hub.Unregister(c)
		//nolint:errcheck // Connection teardown
		c.conn.Close()
	}()

	pongWait := time.Duration(cfg.PingInterval+cfg.PongTimeout) * time.Second
	c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	//nolint:errcheck // Deadline on a live connection
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		//nolint:errcheck // Deadline on a live connection
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeWait bounds how long a single frame write may take.
const writeWait = 10 * time.Second

// writePump sends queued messages and periodic pings to the client.
func (c *WSClient) writePump(cfg config.WebSocketConfig) {
	ticker := time.NewTicker(time.Duration(cfg.PingInterval) * time.Second)
	defer func() {
		ticker.Stop()
		//nolint:errcheck // Connection teardown
		c.conn.Close()
	}()

	for {
		select {
		case data, open := <-c.send:
			//nolint:errcheck // Deadline on a live connection
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !open {
				//nolint:errcheck // Best-effort close frame
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			//nolint:errcheck // Deadline on a live connection
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

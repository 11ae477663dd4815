package websocket

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrUnknownConnection = errors.New("unknown connection")
	ErrSlowClient        = errors.New("client send buffer full")
)

// Hub tracks the connections open on this process and pushes frames to
// them. It implements ports.Pusher.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	closed  bool
	logger  *zap.Logger
}

// NewHub creates an empty hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c.id] = c
	return true
}

// unregister removes the client and closes its send channel. It reports
// whether the client was still registered.
func (h *Hub) unregister(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[id]
	if !ok {
		return false
	}
	delete(h.clients, id)
	close(c.send)
	return true
}

// Push queues payload on the connection's send buffer. A client whose
// buffer is full is disconnected.
func (h *Hub) Push(ctx context.Context, connectionID string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.RLock()
	c, ok := h.clients[connectionID]
	if !ok {
		h.mu.RUnlock()
		return ErrUnknownConnection
	}
	select {
	case c.send <- payload:
		h.mu.RUnlock()
		return nil
	default:
	}
	h.mu.RUnlock()

	h.logger.Warn("Dropping slow websocket client", zap.String("connectionID", connectionID))
	h.unregister(connectionID)
	return ErrSlowClient
}

// Len returns the number of open connections
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
	h.logger.Info("Websocket hub closed")
}

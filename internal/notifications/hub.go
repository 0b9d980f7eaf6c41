package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"devhub/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerUser = 12
	maxTotalConns   = 10000
)

// Registration failures.
var (
	ErrServerConnLimit = errors.New("server connection limit reached")
	ErrUserConnLimit   = errors.New("user connection limit reached")
	ErrHubClosed       = errors.New("feed hub is shut down")
)

// FeedHub fans feed events out to every connected WebSocket client.
type FeedHub struct {
	mu         sync.RWMutex
	conns      map[string]map[*Client]struct{}
	totalConns int
	closed     bool
	log        *slog.Logger
}

func NewFeedHub(log *slog.Logger) *FeedHub {
	return &FeedHub{
		conns: make(map[string]map[*Client]struct{}),
		log:   log,
	}
}

// Name returns a human-readable identifier for this hub.
func (h *FeedHub) Name() string { return "feed hub" }

// Register adds a connection for userID, enforcing per-user and global limits.
func (h *FeedHub) Register(userID string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.totalConns >= maxTotalConns {
		return nil, ErrServerConnLimit
	}

	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		return nil, ErrUserConnLimit
	}

	client := NewClient(h, conn, userID, h.log)
	m[client] = struct{}{}
	h.totalConns++
	observability.WebSocketConnectionsTotal.Inc()
	return client, nil
}

// UnregisterClient removes client and closes its send channel. Calling it
// twice is safe.
func (h *FeedHub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	close(client.Send)
	h.totalConns--
	observability.WebSocketConnectionsTotal.Dec()
	if len(m) == 0 {
		delete(h.conns, client.UserID)
	}
}

// BroadcastAll sends message to every connected client.
func (h *FeedHub) BroadcastAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(message)
		}
	}
}

// Count returns the number of open connections.
func (h *FeedHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConns
}

// StartWiring subscribes the hub to feed events published through n.
func (h *FeedHub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartFeedSubscriber(ctx, func(payload string) {
		h.BroadcastAll([]byte(payload))
	})
}

// Shutdown closes every client's send channel; each write pump then sends a
// close frame and closes its connection.
func (h *FeedHub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	for _, clients := range h.conns {
		for client := range clients {
			close(client.Send)
			observability.WebSocketConnectionsTotal.Dec()
		}
	}
	h.log.Info("feed hub shut down", slog.Int("connections", h.totalConns))
	h.conns = make(map[string]map[*Client]struct{})
	h.totalConns = 0
	return nil
}

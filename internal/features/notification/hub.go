package notification

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
}

// Hub fans notifications out to the websocket connections of a user.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]map[Conn]struct{}
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		conns:  make(map[string]map[Conn]struct{}),
		logger: logger,
	}
}

func (h *Hub) Register(userID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[Conn]struct{})
	}
	h.conns[userID][c] = struct{}{}
}

func (h *Hub) Unregister(userID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns[userID], c)
	if len(h.conns[userID]) == 0 {
		delete(h.conns, userID)
	}
}

// Push sends n to every open connection of its user; failed connections
// are dropped.
func (h *Hub) Push(n *Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		h.logger.Error("Failed to encode notification", zap.Error(err))
		return
	}

	h.mu.RLock()
	targets := make([]Conn, 0, len(h.conns[n.UserID]))
	for c := range h.conns[n.UserID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Debug("Dropping websocket connection", zap.String("user_id", n.UserID), zap.Error(err))
			h.Unregister(n.UserID, c)
		}
	}
}

// Serve keeps a client connection registered until it closes.
func (h *Hub) Serve(c *websocket.Conn) {
	userID, _ := c.Locals("userID").(string)
	if userID == "" {
		_ = c.Close()
		return
	}
	h.Register(userID, c)
	defer h.Unregister(userID, c)

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

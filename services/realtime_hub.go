package services

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"nomify/models"
)

type WSClient struct {
	UserID uint
	Conn   *websocket.Conn
	mu     sync.Mutex
}

// RealtimeHub fans pipeline state transitions and alerts out to every
// websocket the owning user has open, so the presentation layer can
// re-render from PipelineState alone.
type RealtimeHub struct {
	mu      sync.RWMutex
	clients map[uint]map[*WSClient]struct{}
}

func NewRealtimeHub() *RealtimeHub {
	return &RealtimeHub{clients: make(map[uint]map[*WSClient]struct{})}
}

func (h *RealtimeHub) Register(c *WSClient) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*WSClient]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()
}

func (h *RealtimeHub) Unregister(c *WSClient) {
	h.mu.Lock()
	if set := h.clients[c.UserID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
	_ = c.Conn.Close()
}

// BroadcastState pushes a pipeline state transition to the user.
func (h *RealtimeHub) BroadcastState(userID uint, state models.PipelineState) {
	h.broadcast(userID, map[string]any{
		"kind":  "pipeline.state",
		"state": state,
	})
}

// BroadcastAlert pushes a persisted high-risk alert to the user.
func (h *RealtimeHub) BroadcastAlert(userID uint, alert *models.Alert) {
	h.broadcast(userID, map[string]any{
		"kind":  "alert.created",
		"alert": alert,
	})
}

func (h *RealtimeHub) broadcast(userID uint, payload any) {
	msg, _ := json.Marshal(payload)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		c.mu.Lock()
		_ = c.Conn.WriteMessage(websocket.TextMessage, msg)
		c.mu.Unlock()
	}
}

package handlers

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/clinireason-backend/internal/platform/logger"
	"github.com/yungbote/clinireason-backend/internal/realtime"
)

// RealtimeHandler serves the per-user event stream. Each connection gets its
// own client on the caller's channel, so several tabs can listen at once.
type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub

	mu      sync.Mutex
	clients map[uuid.UUID]*realtime.SSEClient
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		hub:     hub,
		clients: make(map[uuid.UUID]*realtime.SSEClient),
	}
}

// GET /events
func (h *RealtimeHandler) Stream(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	client := h.hub.NewSSEClient(userID)
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()
	h.hub.AddChannel(client, realtime.UserChannel(userID))
	h.log.Debug("event stream open", "user_id", userID, "client_id", client.ID)

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.mu.Lock()
	delete(h.clients, client.ID)
	h.mu.Unlock()
	h.hub.CloseClient(client)
}

// CloseAll ends every open stream; used on shutdown.
func (h *RealtimeHandler) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		h.hub.CloseClient(client)
		delete(h.clients, id)
	}
}

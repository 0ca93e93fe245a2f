package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/clinireason-backend/internal/http/response"
	"github.com/yungbote/clinireason-backend/internal/platform/logger"
	"github.com/yungbote/clinireason-backend/internal/services"
)

type NotificationHandler struct {
	log           *logger.Logger
	notifications services.NotificationService
}

func NewNotificationHandler(log *logger.Logger, notifications services.NotificationService) *NotificationHandler {
	return &NotificationHandler{log: log.With("handler", "NotificationHandler"), notifications: notifications}
}

// GET /notifications?limit=20
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	list, err := h.notifications.List(c.Request.Context(), userID, queryLimit(c))
	if err != nil {
		fail(c, err)
		return
	}
	unread, err := h.notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"notifications": list, "unread_count": unread})
}

// GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	n, err := h.notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"unread_count": n})
}

// POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), userID, id); err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	n, err := h.notifications.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"updated": n})
}

// DELETE /notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.notifications.Delete(c.Request.Context(), userID, id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /notifications
func (h *NotificationHandler) DeleteAll(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	n, err := h.notifications.DeleteAll(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": n})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zugo/transit-backend/internal/middleware"
	"github.com/zugo/transit-backend/internal/store"
)

// NotificationHandler serves per-user notifications
type NotificationHandler struct {
	notifications store.NotificationStore
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications store.NotificationStore) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// ListNotifications retrieves the caller's notifications, newest first
// GET /api/v1/notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	notifications, err := h.notifications.List(userCtx.UserID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// MarkRead marks one notification read
// POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.notifications.MarkRead(c.Param("id"), userCtx.UserID.String())
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked read"})
}

// MarkAllRead marks every notification for the caller read
// POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.notifications.MarkAllRead(userCtx.UserID.String()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked read"})
}

// Dismiss deletes a notification
// DELETE /api/v1/notifications/:id
func (h *NotificationHandler) Dismiss(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.notifications.Dismiss(c.Param("id"), userCtx.UserID.String())
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to dismiss notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification dismissed"})
}

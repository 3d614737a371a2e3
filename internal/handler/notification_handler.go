package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skilltracker/skilltracker-api/internal/service"
	"github.com/skilltracker/skilltracker-api/pkg/response"
)

// NotificationHandler exposes the caller's notification feed.
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List returns the caller's notifications, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	notifications, err := h.notifications.ListByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notifications)
}

// UnreadCount returns the number of unread notifications.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notifications.CountUnread(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"unread": count})
}

// MarkRead flips one notification's read flag.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notifications.MarkRead(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

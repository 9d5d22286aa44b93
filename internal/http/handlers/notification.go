package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nooch/nooch-backend/internal/http/response"
	"github.com/nooch/nooch-backend/internal/pkg/ctxutil"
	"github.com/nooch/nooch-backend/internal/services"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// GET /notifications?unread=true&limit=
func (nh *NotificationHandler) List(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	unreadOnly := c.Query("unread") == "true"
	limit := queryInt(c, "limit", 50)
	notifications, err := nh.notificationService.List(c.Request.Context(), rd.UserID, unreadOnly, limit)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"notifications": notifications})
}

// GET /notifications/unread-count
func (nh *NotificationHandler) UnreadCount(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	count, err := nh.notificationService.CountUnread(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"count": count})
}

// POST /notifications/:id/read
func (nh *NotificationHandler) MarkRead(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_notification_id", err)
		return
	}
	if err := nh.notificationService.MarkRead(c.Request.Context(), rd.UserID, id); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /notifications/read-all
func (nh *NotificationHandler) MarkAllRead(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	updated, err := nh.notificationService.MarkAllRead(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"updated": updated})
}

package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type notificationService interface {
	List(ctx context.Context, query dto.NotificationQuery, actor *models.JWTClaims) ([]models.Notification, error)
	UnreadCount(ctx context.Context, actor *models.JWTClaims) (int, error)
	MarkRead(ctx context.Context, id string, actor *models.JWTClaims) (*models.Notification, error)
	MarkAllRead(ctx context.Context, actor *models.JWTClaims) (int, error)
}

// NotificationHandler serves the caller's inbox.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(svc notificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// List godoc
// @Summary List own notifications, newest first
// @Tags Notifications
// @Param category query string false "all, unread, schedule or course"
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	var query dto.NotificationQuery
	if !bindQuery(c, &query, "invalid query parameters") {
		return
	}
	notifications, err := h.service.List(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, notifications, listMeta(c, len(notifications)))
}

// UnreadCount godoc
// @Summary Count unread notifications
// @Tags Notifications
// @Success 200 {object} response.Envelope
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.service.UnreadCount(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"unread": count})
}

// MarkRead godoc
// @Summary Mark notification read
// @Tags Notifications
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Envelope
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	n, err := h.service.MarkRead(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, n)
}

// MarkAllRead godoc
// @Summary Mark every own notification read
// @Tags Notifications
// @Success 200 {object} response.Envelope
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	updated, err := h.service.MarkAllRead(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"updated": updated})
}

package handlers

import (
	"net/http"

	"github.com/anonto42/campustrack/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// RegisterNotificationRoutes registers notification routes. All of them need a token.
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/user/:id", h.GetNotifications)
	g.PUT("/user/:id/viewed", h.MarkAllViewed)
	g.PUT("/:id/view", h.MarkViewed)
	g.DELETE("/:id", h.DeleteNotification)
}

// GetNotifications lists a user's notifications newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	userID, err := objectIDParam(c, "id", "user")
	if err != nil {
		return err
	}
	notifications, err := h.notificationService.ListNotifications(c.Request().Context(), actor, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, notifications)
}

// MarkAllViewed marks every notification of a user as viewed
func (h *NotificationHandler) MarkAllViewed(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	userID, err := objectIDParam(c, "id", "user")
	if err != nil {
		return err
	}
	if err := h.notificationService.MarkAllViewed(c.Request().Context(), actor, userID); err != nil {
		return httpError(err)
	}
	return message(c, "Notifications marked as viewed")
}

// MarkViewed marks one notification as viewed
func (h *NotificationHandler) MarkViewed(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := objectIDParam(c, "id", "notification")
	if err != nil {
		return err
	}
	if err := h.notificationService.MarkViewed(c.Request().Context(), actor, id); err != nil {
		return httpError(err)
	}
	return message(c, "Notification marked as viewed")
}

// DeleteNotification deletes one notification
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := objectIDParam(c, "id", "notification")
	if err != nil {
		return err
	}
	if err := h.notificationService.DeleteNotification(c.Request().Context(), actor, id); err != nil {
		return httpError(err)
	}
	return message(c, "Notification deleted successfully")
}

package handlers

import (
	"net/http"

	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterUserRoutes registers user profile-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group, requireAuth, optionalAuth echo.MiddlewareFunc) {
	g.GET("/stats", h.GetStats, optionalAuth)
	g.GET("/users/:id", h.GetUser, optionalAuth)
	g.PUT("/edit/:id", h.EditUser, requireAuth)
	g.DELETE("/users/:id", h.DeleteUser, requireAuth)
}

// GetUser returns a user profile without the password hash
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := objectIDParam(c, "id", "user")
	if err != nil {
		return err
	}
	user, err := h.userService.GetUser(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// GetStats returns the caller's post counters, or site-wide counts for anonymous callers
func (h *UserHandler) GetStats(c echo.Context) error {
	stats, err := h.userService.Stats(c.Request().Context(), optionalActorID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

// EditUser updates a profile from a multipart body with an optional profilePic
func (h *UserHandler) EditUser(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	target, err := objectIDParam(c, "id", "user")
	if err != nil {
		return err
	}

	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	pic, err := formImage(c, "profilePic")
	if err != nil {
		return err
	}

	user, err := h.userService.EditUser(c.Request().Context(), actor, target, req, pic)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user and everything they own
func (h *UserHandler) DeleteUser(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	target, err := objectIDParam(c, "id", "user")
	if err != nil {
		return err
	}
	if err := h.userService.DeleteUser(c.Request().Context(), actor, target); err != nil {
		return httpError(err)
	}
	return message(c, "User deleted successfully")
}

package handlers

import (
	"net/http"

	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AdminHandler handles moderation requests. The service checks the admin flag
// on the stored user, not on the token.
type AdminHandler struct {
	adminService *services.AdminService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// RegisterAdminRoutes registers admin routes. All of them need a token.
func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/users", h.GetUsers)
	g.GET("/posts", h.GetPosts)
	g.GET("/stats", h.GetStats)
	g.GET("/audit", h.GetAuditLog)
	g.DELETE("/users/:id", h.DeleteUser)
	g.DELETE("/posts/:id", h.DeletePost)
	g.DELETE("/cleanup", h.Cleanup)
	g.PUT("/users/:id/verification", h.SetVerification)
}

func (h *AdminHandler) GetUsers(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	users, err := h.adminService.ListUsers(c.Request().Context(), actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) GetPosts(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	posts, err := h.adminService.ListPosts(c.Request().Context(), actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

func (h *AdminHandler) GetStats(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	stats, err := h.adminService.Stats(c.Request().Context(), actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) GetAuditLog(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	entries, err := h.adminService.AuditLog(c.Request().Context(), actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	target, err := objectIDParam(c, "id", "user")
	if err != nil {
		return err
	}
	if err := h.adminService.DeleteUser(c.Request().Context(), actor, target); err != nil {
		return httpError(err)
	}
	return message(c, "User deleted successfully")
}

func (h *AdminHandler) DeletePost(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	postID, err := objectIDParam(c, "id", "post")
	if err != nil {
		return err
	}
	if err := h.adminService.DeletePost(c.Request().Context(), actor, postID); err != nil {
		return httpError(err)
	}
	return message(c, "Post deleted successfully")
}

// Cleanup wipes all content and every account
func (h *AdminHandler) Cleanup(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	result, err := h.adminService.Cleanup(c.Request().Context(), actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// SetVerification sets a user's verificationStatus
func (h *AdminHandler) SetVerification(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	target, err := objectIDParam(c, "id", "user")
	if err != nil {
		return err
	}
	var req models.VerificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.adminService.SetVerification(c.Request().Context(), actor, target, *req.VerificationStatus)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

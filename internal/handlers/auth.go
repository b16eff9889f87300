package handlers

import (
	"net/http"

	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, requireAuth, limit echo.MiddlewareFunc) {
	g.POST("/register", h.Register, limit)
	g.POST("/login", h.Login, limit)
	g.POST("/logout", h.Logout, requireAuth)
	g.GET("/verify", h.Verify, requireAuth)
}

// Register creates an account from a JSON or multipart body with an optional profilePic
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pic, err := formImage(c, "profilePic")
	if err != nil {
		return err
	}

	resp, err := h.authService.Register(c.Request().Context(), req, pic)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login signs a user in by studentname and password
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout acknowledges a logout. Tokens are stateless and expire on their own.
func (h *AuthHandler) Logout(c echo.Context) error {
	return message(c, "Logged out successfully")
}

// Verify returns the user the token belongs to
func (h *AuthHandler) Verify(c echo.Context) error {
	id, err := actorID(c)
	if err != nil {
		return err
	}
	user, err := h.authService.Current(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"user": user})
}

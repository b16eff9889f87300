package handlers

import (
	"net/http"

	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UploadHandler stores images ahead of the request that uses them
type UploadHandler struct {
	uploadService *services.UploadService
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(uploadService *services.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// RegisterUploadRoutes registers upload routes. All of them need a token.
func (h *UploadHandler) RegisterUploadRoutes(g *echo.Group) {
	g.POST("/profile", h.UploadProfile)
	g.POST("/post", h.UploadPostImages)
}

// UploadProfile stores the multipart field "image"
func (h *UploadHandler) UploadProfile(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	file, err := formImage(c, "image")
	if err != nil {
		return err
	}
	if file == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No image uploaded")
	}
	img, err := h.uploadService.UploadProfile(c.Request().Context(), actor, *file)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, img)
}

// UploadPostImages stores the multipart field "images"
func (h *UploadHandler) UploadPostImages(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	files, err := formImages(c, "images", models.MaxPostImages)
	if err != nil {
		return err
	}
	images, err := h.uploadService.UploadPostImages(c.Request().Context(), actor, files)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"images": images})
}

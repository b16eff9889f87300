package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/campustrack/backend/internal/middleware"
	"github.com/anonto42/campustrack/backend/internal/repositories"
	"github.com/anonto42/campustrack/backend/internal/services"
	"github.com/anonto42/campustrack/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// actorID returns the authenticated user's id
func actorID(c echo.Context) (primitive.ObjectID, error) {
	claims := middleware.Claims(c)
	if claims == nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	return id, nil
}

// optionalActorID returns the authenticated user's id, or nil for anonymous requests
func optionalActorID(c echo.Context) *primitive.ObjectID {
	claims := middleware.Claims(c)
	if claims == nil {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return nil
	}
	return &id
}

func objectIDParam(c echo.Context, name, label string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+label+" ID")
	}
	return id, nil
}

// bindAndValidate binds the request body into req and runs its validate tags
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}

// formImages reads up to max images from a multipart field. Non-multipart
// requests carry no files.
func formImages(c echo.Context, field string, max int) ([]storage.File, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart form")
	}
	files, err := storage.ReadImages(form.File[field], max)
	if err != nil {
		return nil, httpError(err)
	}
	return files, nil
}

// formImage reads at most one image from a multipart field
func formImage(c echo.Context, field string) (*storage.File, error) {
	files, err := formImages(c, field, 1)
	if err != nil || len(files) == 0 {
		return nil, err
	}
	return &files[0], nil
}

// httpError maps a service or storage error to an HTTP error
func httpError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	switch {
	case storage.IsValidationError(err), errors.Is(err, services.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, repositories.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Resource not found")
	case errors.Is(err, services.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, repositories.ErrDuplicate):
		return echo.NewHTTPError(http.StatusConflict, "Resource already exists")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
}

func message(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, map[string]string{"message": msg})
}

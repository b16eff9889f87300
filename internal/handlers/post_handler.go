package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postService *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("", h.GetPosts)
	g.GET("/user/:userId", h.GetUserPosts)
	g.GET("/:id", h.GetPost)
	g.POST("", h.CreatePost, requireAuth)
	g.PUT("/:id", h.UpdatePost, requireAuth)
	g.DELETE("/:id", h.DeletePost, requireAuth)
}

// CreatePost creates a new post from a multipart body with up to three images
func (h *PostHandler) CreatePost(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	files, err := formImages(c, "images", models.MaxPostImages)
	if err != nil {
		return err
	}

	post, err := h.postService.CreatePost(c.Request().Context(), actor, req, files)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by ID and counts the view
func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := objectIDParam(c, "id", "post")
	if err != nil {
		return err
	}
	post, err := h.postService.ViewPost(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// GetPosts lists posts newest first. skip and limit are optional.
func (h *PostHandler) GetPosts(c echo.Context) error {
	skip, _ := strconv.ParseInt(c.QueryParam("skip"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}

	posts, err := h.postService.ListPosts(c.Request().Context(), skip, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// GetUserPosts lists the posts of one user
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	userID, err := objectIDParam(c, "userId", "user")
	if err != nil {
		return err
	}
	posts, err := h.postService.ListUserPosts(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// UpdatePost updates an existing post. Only the owner may edit.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	postID, err := objectIDParam(c, "id", "post")
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	files, err := formImages(c, "images", models.MaxPostImages)
	if err != nil {
		return err
	}

	post, err := h.postService.UpdatePost(c.Request().Context(), actor, postID, req, files)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post with its comments, notifications and images
func (h *PostHandler) DeletePost(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	postID, err := objectIDParam(c, "id", "post")
	if err != nil {
		return err
	}
	if err := h.postService.DeletePost(c.Request().Context(), actor, postID); err != nil {
		return httpError(err)
	}
	return message(c, "Post deleted successfully")
}

package handlers

import (
	"net/http"

	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentService *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/:id/comment", h.GetComments)
	g.POST("/:id/comment", h.CreateComment, requireAuth)
	g.DELETE("/:id/comment/:commentId", h.DeleteComment, requireAuth)
}

// GetComments lists the comments of a post newest first
func (h *CommentHandler) GetComments(c echo.Context) error {
	postID, err := objectIDParam(c, "id", "post")
	if err != nil {
		return err
	}
	comments, err := h.commentService.ListComments(c.Request().Context(), postID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, comments)
}

// CreateComment adds a comment and notifies the post owner
func (h *CommentHandler) CreateComment(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	postID, err := objectIDParam(c, "id", "post")
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.commentService.AddComment(c.Request().Context(), actor, postID, req.Text)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, comment)
}

// DeleteComment deletes a comment. The comment's own post is used, the :id
// segment is only checked for shape.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	if _, err := objectIDParam(c, "id", "post"); err != nil {
		return err
	}
	commentID, err := objectIDParam(c, "commentId", "comment")
	if err != nil {
		return err
	}
	if err := h.commentService.DeleteComment(c.Request().Context(), actor, commentID); err != nil {
		return httpError(err)
	}
	return message(c, "Comment deleted successfully")
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openbloc/chainfeed/internal/ledger"
	"github.com/openbloc/chainfeed/internal/middleware"
	"github.com/openbloc/chainfeed/internal/models"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	store ledger.Store
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(store ledger.Store) *CommentHandler {
	return &CommentHandler{store: store}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.GET("/posts/:post_id/comments", h.GetCommentsByPostID)
}

// CreateComment appends a comment to a post. Comments are immutable once
// recorded; there are no update or delete routes.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	postID, err := parsePostID(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	id, err := h.store.AddComment(c.Request().Context(), postID, actor, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrPostNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		case errors.Is(err, ledger.ErrEmptyContent):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	comments, err := h.store.GetComments(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	for _, comment := range comments {
		if comment.ID == id {
			return c.JSON(http.StatusCreated, comment)
		}
	}
	return c.JSON(http.StatusCreated, models.Comment{ID: id, PostID: postID, Author: actor, Content: req.Content})
}

// GetCommentsByPostID retrieves all comments for a specific post, in ledger
// append order.
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	postID, err := parsePostID(c)
	if err != nil {
		return err
	}

	comments, err := h.store.GetComments(c.Request().Context(), postID)
	if err != nil {
		if errors.Is(err, ledger.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, comments)
}

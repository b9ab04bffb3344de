package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openbloc/chainfeed/internal/ledger"
	"github.com/openbloc/chainfeed/internal/middleware"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	store ledger.Store
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(store ledger.Store) *LikeHandler {
	return &LikeHandler{store: store}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/likes/toggle", h.ToggleLike)
	g.GET("/posts/:post_id/likes/status", h.GetLikeStatus)
}

// ToggleLike flips the actor's like for a post. The response carries the
// authoritative flag and count produced by the same atomic ledger mutation,
// which clients use instead of their own increment.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	postID, err := parsePostID(c)
	if err != nil {
		return err
	}

	state, err := h.store.ToggleLike(c.Request().Context(), postID, actor)
	if err != nil {
		if errors.Is(err, ledger.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, state)
}

// GetLikeStatus reports whether the authenticated actor currently likes the
// post.
func (h *LikeHandler) GetLikeStatus(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	postID, err := parsePostID(c)
	if err != nil {
		return err
	}

	liked, err := h.store.HasLiked(c.Request().Context(), postID, actor)
	if err != nil {
		if errors.Is(err, ledger.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"post_id": postID, "actor": actor, "liked": liked})
}

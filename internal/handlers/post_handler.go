package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/openbloc/chainfeed/internal/ledger"
	"github.com/openbloc/chainfeed/internal/middleware"
	"github.com/openbloc/chainfeed/internal/models"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	store ledger.Store
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(store ledger.Store) *PostHandler {
	return &PostHandler{store: store}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.GetAllPosts)
	g.GET("/posts/:post_id", h.GetPost)
}

// CreatePost records a new post on the ledger. The author is always the
// verified actor from the bearer token.
func (h *PostHandler) CreatePost(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	id, err := h.store.CreatePost(c.Request().Context(), actor, req.Content)
	if err != nil {
		if errors.Is(err, ledger.ErrEmptyContent) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	post, err := h.store.GetPost(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a single post by id
func (h *PostHandler) GetPost(c echo.Context) error {
	postID, err := parsePostID(c)
	if err != nil {
		return err
	}

	post, err := h.store.GetPost(c.Request().Context(), postID)
	if err != nil {
		if errors.Is(err, ledger.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, post)
}

// GetAllPosts returns every post, newest first (creation time descending,
// id descending on ties).
func (h *PostHandler) GetAllPosts(c echo.Context) error {
	posts, err := h.store.GetAllPosts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
	return c.JSON(http.StatusOK, posts)
}

func parsePostID(c echo.Context) (uint64, error) {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}
	return postID, nil
}

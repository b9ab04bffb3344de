package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/openbloc/chainfeed/internal/ledger"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 200
)

// EventSource provides read access to the committed-event journal.
type EventSource interface {
	Recent(ctx context.Context, limit int64) ([]ledger.Event, error)
}

// EventHandler handles HTTP requests for the audit feed of committed events
type EventHandler struct {
	source EventSource
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(source EventSource) *EventHandler {
	return &EventHandler{source: source}
}

// RegisterEventRoutes registers event-related routes
func (h *EventHandler) RegisterEventRoutes(g *echo.Group) {
	g.GET("/events", h.GetRecentEvents)
}

// GetRecentEvents returns the most recently committed ledger events, newest
// first. The optional limit query parameter caps the page size.
func (h *EventHandler) GetRecentEvents(c echo.Context) error {
	limit := int64(defaultEventLimit)
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit")
		}
		limit = parsed
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	events, err := h.source.Recent(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if events == nil {
		events = []ledger.Event{}
	}
	return c.JSON(http.StatusOK, events)
}

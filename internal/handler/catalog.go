package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// CatalogHandler serves the public, read-only event catalog.  Responses
// contain no buyer data and are safe to cache.
type CatalogHandler struct {
	Events  *repository.EventRepo
	Seats   *repository.SeatClassRepo
	Reviews *repository.ReviewRepo
}

// ListEvents handles GET /v1/events with optional filters q (name
// contains), category, location (contains), min_price_cents and
// max_price_cents, plus limit/offset.
func (h *CatalogHandler) ListEvents(c echo.Context) error {
	limit, offset := paging(c)
	f := repository.EventFilter{
		Q:        c.QueryParam("q"),
		Category: c.QueryParam("category"),
		Location: c.QueryParam("location"),
		Limit:    limit,
		Offset:   offset,
	}
	var ok bool
	if f.MinPriceCents, ok = priceParam(c, "min_price_cents"); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "min_price_cents must be a non-negative integer"})
	}
	if f.MaxPriceCents, ok = priceParam(c, "max_price_cents"); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_price_cents must be a non-negative integer"})
	}
	if f.MinPriceCents != nil && f.MaxPriceCents != nil && *f.MinPriceCents > *f.MaxPriceCents {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "min_price_cents must not exceed max_price_cents"})
	}
	events, err := h.Events.List(c.Request().Context(), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": events, "limit": limit, "offset": offset})
}

// ListCategories handles GET /v1/events/categories for the filter UI.
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	cats, err := h.Events.Categories(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": cats})
}

// priceParam reads an optional cents amount.  ok is false when the value
// is present but not a non-negative integer.
func priceParam(c echo.Context, name string) (*int64, bool) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, true
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return nil, false
	}
	return &n, true
}

// GetEvent handles GET /v1/events/:id: the event with its seat classes and
// review summary.
func (h *CatalogHandler) GetEvent(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx := c.Request().Context()
	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	seats, err := h.Seats.ListByEvent(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	n, avg, err := h.Reviews.Summary(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, model.EventDetail{Event: *ev, SeatClasses: seats, ReviewCount: n, AverageRating: avg})
}

// ListReviews handles GET /v1/events/:id/reviews.
func (h *CatalogHandler) ListReviews(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Events.GetByID(ctx, id); err != nil {
		return respondError(c, err)
	}
	reviews, err := h.Reviews.ListByEvent(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": reviews})
}

package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/middleware"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// PurchaseChecker answers whether a buyer attended (bought for) an event.
type PurchaseChecker interface {
	HasPurchased(ctx context.Context, buyerID string, eventID uint64) (bool, error)
}

// ReviewHandler lets members review events they bought tickets for and
// lets admins remove reviews.
type ReviewHandler struct {
	Reviews    *repository.ReviewRepo
	Events     *repository.EventRepo
	Purchases  PurchaseChecker
	Invalidate CacheInvalidator
}

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=500"`
}

// Create handles POST /v1/events/:id/reviews.  403 when the member has no
// purchase for the event, 409 on a second review.
func (h *ReviewHandler) Create(c echo.Context) error {
	buyer := middleware.BuyerID(c)
	if buyer == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var body reviewRequest
	if ok, err := bindAndValidate(c, &body); !ok {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.Events.GetByID(ctx, eventID); err != nil {
		return respondError(c, err)
	}
	bought, err := h.Purchases.HasPurchased(ctx, buyer, eventID)
	if err != nil {
		return respondError(c, err)
	}
	if !bought {
		return respondError(c, repository.ErrForbidden)
	}
	rv := &model.Review{EventID: eventID, BuyerID: buyer, Rating: body.Rating, Comment: strings.TrimSpace(body.Comment)}
	if err := h.Reviews.Create(ctx, rv); err != nil {
		return respondError(c, err)
	}
	h.Invalidate.invalidate(ctx)
	return c.JSON(http.StatusCreated, rv)
}

// Delete handles DELETE /v1/admin/reviews/:id.
func (h *ReviewHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
	}
	if err := h.Reviews.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	h.Invalidate.invalidate(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

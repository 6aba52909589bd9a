package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/middleware"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/service"
)

// TicketResolver is the verification lookup.
type TicketResolver interface {
	Resolve(ctx context.Context, code string, level service.DetailLevel) (*model.TicketView, error)
}

// TicketHandler serves gate checks.
type TicketHandler struct {
	Verifier TicketResolver
}

// Verify handles GET /v1/tickets/verify/:code.  Anyone holding a code may
// check it; only ADMIN tokens see buyer and price fields.
func (h *TicketHandler) Verify(c echo.Context) error {
	level := service.DetailLimited
	if middleware.IsAdmin(c) {
		level = service.DetailFull
	}
	view, err := h.Verifier.Resolve(c.Request().Context(), c.Param("code"), level)
	if err != nil {
		return respondError(c, err)
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.JSON(http.StatusOK, view)
}

package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// AdminEventHandler manages events and their seat classes.  Every write
// drops the cached catalog.
type AdminEventHandler struct {
	Events     *repository.EventRepo
	Seats      *repository.SeatClassRepo
	Invalidate CacheInvalidator
}

type eventRequest struct {
	Name           string    `json:"name" validate:"required,max=200"`
	Category       string    `json:"category" validate:"required,max=80"`
	StartsAt       time.Time `json:"starts_at" validate:"required"`
	Location       string    `json:"location" validate:"required,max=200"`
	BasePriceCents int64     `json:"base_price_cents" validate:"gte=0"`
	Description    string    `json:"description" validate:"max=10000"`
	PosterRef      *string   `json:"poster_ref" validate:"omitempty,max=500"`
}

func (r eventRequest) toModel() model.Event {
	return model.Event{
		Name:           strings.TrimSpace(r.Name),
		Category:       strings.TrimSpace(r.Category),
		StartsAt:       r.StartsAt.UTC(),
		Location:       strings.TrimSpace(r.Location),
		BasePriceCents: r.BasePriceCents,
		Description:    r.Description,
		PosterRef:      r.PosterRef,
	}
}

type seatClassRequest struct {
	Label          string `json:"label" validate:"required,max=80"`
	UnitPriceCents int64  `json:"unit_price_cents" validate:"gte=0"`
	Capacity       int    `json:"capacity" validate:"gte=0,lte=1000000"`
}

// CreateEvent handles POST /v1/admin/events.
func (h *AdminEventHandler) CreateEvent(c echo.Context) error {
	var body eventRequest
	if ok, err := bindAndValidate(c, &body); !ok {
		return err
	}
	ev := body.toModel()
	if err := h.Events.Create(c.Request().Context(), &ev); err != nil {
		return respondError(c, err)
	}
	h.Invalidate.invalidate(c.Request().Context())
	return c.JSON(http.StatusCreated, ev)
}

// GetEvent handles GET /v1/admin/events/:id including seat classes with
// their capacity and sold counts.
func (h *AdminEventHandler) GetEvent(c echo.Context) error {
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
	return c.JSON(http.StatusOK, model.EventDetail{Event: *ev, SeatClasses: seats})
}

// UpdateEvent handles PUT /v1/admin/events/:id.
func (h *AdminEventHandler) UpdateEvent(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var body eventRequest
	if ok, err := bindAndValidate(c, &body); !ok {
		return err
	}
	ev := body.toModel()
	ev.ID = id
	if err := h.Events.Update(c.Request().Context(), &ev); err != nil {
		return respondError(c, err)
	}
	h.Invalidate.invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, ev)
}

// DeleteEvent handles DELETE /v1/admin/events/:id.  409 once tickets were sold.
func (h *AdminEventHandler) DeleteEvent(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	if err := h.Events.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	h.Invalidate.invalidate(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// ListSeatClasses handles GET /v1/admin/events/:id/seat-classes.
func (h *AdminEventHandler) ListSeatClasses(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Events.GetByID(ctx, id); err != nil {
		return respondError(c, err)
	}
	seats, err := h.Seats.ListByEvent(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": seats})
}

// CreateSeatClass handles POST /v1/admin/events/:id/seat-classes.  A label
// already used on the event answers 409.
func (h *AdminEventHandler) CreateSeatClass(c echo.Context) error {
	eventID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var body seatClassRequest
	if ok, err := bindAndValidate(c, &body); !ok {
		return err
	}
	sc := model.SeatClass{
		EventID:        eventID,
		Label:          strings.TrimSpace(body.Label),
		UnitPriceCents: body.UnitPriceCents,
		Capacity:       body.Capacity,
	}
	if err := h.Seats.Create(c.Request().Context(), &sc); err != nil {
		return respondError(c, err)
	}
	h.Invalidate.invalidate(c.Request().Context())
	return c.JSON(http.StatusCreated, sc)
}

// UpdateSeatClass handles PUT /v1/admin/events/:id/seat-classes/:seatClassId.
func (h *AdminEventHandler) UpdateSeatClass(c echo.Context) error {
	eventID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	seatClassID, ok := parseID(c, "seatClassId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat class id"})
	}
	var body seatClassRequest
	if ok, err := bindAndValidate(c, &body); !ok {
		return err
	}
	sc, err := h.Seats.Update(c.Request().Context(), eventID, seatClassID, repository.SeatClassPatch{
		Label:          strings.TrimSpace(body.Label),
		UnitPriceCents: body.UnitPriceCents,
		Capacity:       body.Capacity,
	})
	if err != nil {
		return respondError(c, err)
	}
	h.Invalidate.invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, sc)
}

// DeleteSeatClass handles DELETE /v1/admin/events/:id/seat-classes/:seatClassId.
func (h *AdminEventHandler) DeleteSeatClass(c echo.Context) error {
	eventID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	seatClassID, ok := parseID(c, "seatClassId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat class id"})
	}
	if err := h.Seats.Delete(c.Request().Context(), eventID, seatClassID); err != nil {
		return respondError(c, err)
	}
	h.Invalidate.invalidate(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

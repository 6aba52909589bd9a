package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// InquiryHandler serves the public contact form and its admin inbox.
type InquiryHandler struct {
	Inquiries *repository.InquiryRepo
}

type inquiryRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=120"`
	Email   string  `json:"email" validate:"required,email,max=200"`
	Subject string  `json:"subject" validate:"required,max=150"`
	Message string  `json:"message" validate:"required,max=2000"`
	EventID *uint64 `json:"event_id" validate:"omitempty,gt=0"`
}

type inquiryStatusRequest struct {
	Status     string  `json:"status" validate:"required,oneof=PENDING REPLIED"`
	AdminNotes *string `json:"admin_notes" validate:"omitempty,max=2000"`
}

// Create handles POST /v1/inquiries.  An unknown event_id answers 404.
func (h *InquiryHandler) Create(c echo.Context) error {
	var body inquiryRequest
	if ok, err := bindAndValidate(c, &body); !ok {
		return err
	}
	in := &model.Inquiry{
		Email:   strings.TrimSpace(body.Email),
		Subject: strings.TrimSpace(body.Subject),
		Message: strings.TrimSpace(body.Message),
		EventID: body.EventID,
	}
	if body.Name != nil {
		if n := strings.TrimSpace(*body.Name); n != "" {
			in.Name = &n
		}
	}
	if err := h.Inquiries.Create(c.Request().Context(), in); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": in.ID, "status": in.Status})
}

// List handles GET /v1/admin/inquiries?status=&q=&limit=&offset=.
func (h *InquiryHandler) List(c echo.Context) error {
	status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))
	if status != "" && status != model.InquiryPending && status != model.InquiryReplied {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be PENDING or REPLIED"})
	}
	limit, offset := paging(c)
	items, err := h.Inquiries.List(c.Request().Context(), repository.InquiryFilter{
		Status: status, Query: c.QueryParam("q"), Limit: limit, Offset: offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "limit": limit, "offset": offset})
}

// Get handles GET /v1/admin/inquiries/:id.
func (h *InquiryHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid inquiry id"})
	}
	in, err := h.Inquiries.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, in)
}

// SetStatus handles PATCH /v1/admin/inquiries/:id/status.
func (h *InquiryHandler) SetStatus(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid inquiry id"})
	}
	var body inquiryStatusRequest
	if ok, err := bindAndValidate(c, &body); !ok {
		return err
	}
	ctx := c.Request().Context()
	if err := h.Inquiries.SetStatus(ctx, id, body.Status, body.AdminNotes); err != nil {
		return respondError(c, err)
	}
	in, err := h.Inquiries.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, in)
}

// Delete handles DELETE /v1/admin/inquiries/:id.
func (h *InquiryHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid inquiry id"})
	}
	if err := h.Inquiries.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

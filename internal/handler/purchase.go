package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/export"
	"github.com/iliyamo/event-ticketing/internal/middleware"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/service"
)

// Purchaser is the purchase core as seen from HTTP.
type Purchaser interface {
	Purchase(ctx context.Context, req service.PurchaseRequest) (*model.Purchase, error)
}

// PurchaseReader serves a member's own purchases.
type PurchaseReader interface {
	ListByBuyer(ctx context.Context, buyerID string) ([]model.PurchaseSummary, error)
	GetForBuyer(ctx context.Context, buyerID string, id uint64) (*model.PurchaseSummary, error)
}

// PurchaseHandler serves member purchase routes.  All methods assume
// JWTAuth ran; a missing subject is answered with 401.
type PurchaseHandler struct {
	Coordinator Purchaser
	Purchases   PurchaseReader
	// Timeout bounds one purchase call including lock waits and retries.
	Timeout time.Duration
}

type purchaseRequest struct {
	SeatClassID uint64 `json:"seat_class_id" validate:"required,gt=0"`
	// Quantity is range-checked by the coordinator so every entry point
	// shares one rule.
	Quantity int `json:"quantity"`
}

// Buy handles POST /v1/events/:id/purchases with body
// {"seat_class_id": 7, "quantity": 3}.  201 returns the committed purchase.
func (h *PurchaseHandler) Buy(c echo.Context) error {
	buyer := middleware.BuyerID(c)
	if buyer == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var body purchaseRequest
	if ok, err := bindAndValidate(c, &body); !ok {
		return err
	}

	ctx := c.Request().Context()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}
	p, err := h.Coordinator.Purchase(ctx, service.PurchaseRequest{
		BuyerID:     buyer,
		EventID:     eventID,
		SeatClassID: body.SeatClassID,
		Quantity:    body.Quantity,
	})
	if err != nil {
		return respondError(c, err)
	}
	c.Response().Header().Set("Location", "/v1/purchases/"+strconv.FormatUint(p.ID, 10))
	return c.JSON(http.StatusCreated, p)
}

// MyTickets handles GET /v1/my-tickets, newest first.
func (h *PurchaseHandler) MyTickets(c echo.Context) error {
	buyer := middleware.BuyerID(c)
	if buyer == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Purchases.ListByBuyer(c.Request().Context(), buyer)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// own loads the caller's purchase named by :id.  ok is false once a
// response has been written.
func (h *PurchaseHandler) own(c echo.Context) (*model.PurchaseSummary, bool, error) {
	buyer := middleware.BuyerID(c)
	if buyer == "" {
		return nil, false, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid purchase id"})
	}
	p, err := h.Purchases.GetForBuyer(c.Request().Context(), buyer, id)
	if err != nil {
		return nil, false, respondError(c, err)
	}
	return p, true, nil
}

// Get handles GET /v1/purchases/:id for the owning member.
func (h *PurchaseHandler) Get(c echo.Context) error {
	p, ok, err := h.own(c)
	if !ok {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// QR handles GET /v1/purchases/:id/qr: a PNG encoding the verification code.
func (h *PurchaseHandler) QR(c echo.Context) error {
	p, ok, err := h.own(c)
	if !ok {
		return err
	}
	png, err := export.QRPNG(p.VerificationCode)
	if err != nil {
		return respondError(c, err)
	}
	c.Response().Header().Set("Cache-Control", "private, max-age=3600")
	return c.Blob(http.StatusOK, "image/png", png)
}

// PDF handles GET /v1/purchases/:id/ticket.pdf.
func (h *PurchaseHandler) PDF(c echo.Context) error {
	p, ok, err := h.own(c)
	if !ok {
		return err
	}
	doc, err := export.TicketPDF(*p)
	if err != nil {
		return respondError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="ticket-`+strconv.FormatUint(p.ID, 10)+`.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", doc)
}

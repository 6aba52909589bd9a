package service

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// MintInput is everything a purchase record is built from.
type MintInput struct {
	BuyerID         string
	EventID         uint64
	SeatClassID     uint64
	Quantity        int
	UnitPriceCents  int64
	TotalPriceCents int64
}

// TicketFactory builds purchase records with fresh verification codes.  It
// holds no state beyond its clock and code source, so any number of
// instances may mint concurrently.
type TicketFactory struct {
	now     func() time.Time
	newCode func() string
}

// NewTicketFactory returns a factory that stamps records with now (UTC).
func NewTicketFactory(now func() time.Time) *TicketFactory {
	if now == nil {
		now = time.Now
	}
	return &TicketFactory{now: now, newCode: NewVerificationCode}
}

// Mint returns an unsaved purchase.  It has no side effects.
func (f *TicketFactory) Mint(in MintInput) model.Purchase {
	return model.Purchase{
		BuyerID:          in.BuyerID,
		EventID:          in.EventID,
		SeatClassID:      in.SeatClassID,
		Quantity:         in.Quantity,
		UnitPriceCents:   in.UnitPriceCents,
		TotalPriceCents:  in.TotalPriceCents,
		VerificationCode: f.newCode(),
		PurchasedAt:      f.now().UTC().Truncate(time.Millisecond),
	}
}

// NewVerificationCode returns TICKET- followed by a random (v4) UUID, 122
// bits of entropy.
func NewVerificationCode() string {
	return model.TicketCodePrefix + uuid.NewString()
}

// NormalizeCode trims whitespace and adds the TICKET- prefix when the caller
// passed only the UUID part.  The prefix match is case-insensitive.
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	if len(code) >= len(model.TicketCodePrefix) && strings.EqualFold(code[:len(model.TicketCodePrefix)], model.TicketCodePrefix) {
		return model.TicketCodePrefix + code[len(model.TicketCodePrefix):]
	}
	return model.TicketCodePrefix + code
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// DetailLevel selects how much of a purchase a verification reveals.  The
// caller decides; Verifier performs no authorization.
type DetailLevel int

const (
	DetailLimited DetailLevel = iota // event, seat class, quantity, time, code
	DetailFull                       // plus buyer, purchase id and prices
)

// CodeLookup resolves a verification code to a purchase.
type CodeLookup interface {
	GetByCode(ctx context.Context, code string) (*model.PurchaseSummary, error)
}

// Verifier resolves verification codes for gate checks.  It only reads.
type Verifier struct {
	lookup CodeLookup
}

func NewVerifier(lookup CodeLookup) *Verifier { return &Verifier{lookup: lookup} }

// Resolve returns the ticket behind code at the requested detail level, or
// ErrNotFound.  The TICKET- prefix is optional.
func (v *Verifier) Resolve(ctx context.Context, code string, level DetailLevel) (*model.TicketView, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrNotFound
	}
	ps, err := v.lookup.GetByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	view := &model.TicketView{
		VerificationCode: ps.VerificationCode,
		EventID:          ps.EventID,
		EventName:        ps.EventName,
		EventStartsAt:    ps.EventStartsAt,
		SeatClassLabel:   ps.SeatClassLabel,
		Quantity:         ps.Quantity,
		PurchasedAt:      ps.PurchasedAt,
	}
	if level == DetailFull {
		view.Full = true
		view.PurchaseID = ps.ID
		view.BuyerID = ps.BuyerID
		view.UnitPriceCents = ps.UnitPriceCents
		view.TotalPriceCents = ps.TotalPriceCents
	}
	return view, nil
}

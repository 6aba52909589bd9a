package model

import "time"

// TicketCodePrefix marks verification codes for human recognition.
const TicketCodePrefix = "TICKET-"

// Purchase is the immutable record of a committed sale of Quantity seats of
// one seat class.  Prices are captured at the moment of sale.
type Purchase struct {
	ID               uint64    `json:"id"`                // purchases.id
	BuyerID          string    `json:"buyer_id"`          // purchases.buyer_id (identity provider subject)
	EventID          uint64    `json:"event_id"`          // purchases.event_id
	SeatClassID      uint64    `json:"seat_class_id"`     // purchases.seat_class_id
	Quantity         int       `json:"quantity"`          // purchases.quantity
	UnitPriceCents   int64     `json:"unit_price_cents"`  // purchases.unit_price_cents
	TotalPriceCents  int64     `json:"total_price_cents"` // purchases.total_price_cents
	VerificationCode string    `json:"verification_code"` // purchases.verification_code (unique)
	PurchasedAt      time.Time `json:"purchased_at"`      // purchases.purchased_at
}

// PurchaseSummary joins a purchase with the names a member sees in their
// ticket list.
type PurchaseSummary struct {
	Purchase
	EventName      string    `json:"event_name"`
	EventStartsAt  time.Time `json:"event_starts_at"`
	EventLocation  string    `json:"event_location"`
	SeatClassLabel string    `json:"seat_class_label"`
}

// TicketView is what a gate check returns.  Buyer and price fields are only
// populated for full detail.
type TicketView struct {
	VerificationCode string    `json:"verification_code"`
	EventID          uint64    `json:"event_id"`
	EventName        string    `json:"event_name"`
	EventStartsAt    time.Time `json:"event_starts_at"`
	SeatClassLabel   string    `json:"seat_class_label"`
	Quantity         int       `json:"quantity"`
	PurchasedAt      time.Time `json:"purchased_at"`
	Full             bool      `json:"full_detail"`

	PurchaseID      uint64 `json:"purchase_id,omitempty"`
	BuyerID         string `json:"buyer_id,omitempty"`
	UnitPriceCents  int64  `json:"unit_price_cents,omitempty"`
	TotalPriceCents int64  `json:"total_price_cents,omitempty"`
}

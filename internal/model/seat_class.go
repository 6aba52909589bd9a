package model

import "time"

// SeatClass is a priced category of seating for one event with a finite
// remaining quantity.
//
// RemainingQuantity only decreases through a committed purchase, so at all
// times Capacity - RemainingQuantity equals the seats sold.
type SeatClass struct {
	ID                uint64    `json:"id"`                 // seat_classes.id
	EventID           uint64    `json:"event_id"`           // seat_classes.event_id
	Label             string    `json:"label"`              // seat_classes.label, unique per event
	UnitPriceCents    int64     `json:"unit_price_cents"`   // seat_classes.unit_price_cents
	Capacity          int       `json:"capacity"`           // seat_classes.capacity
	RemainingQuantity int       `json:"remaining_quantity"` // seat_classes.remaining_quantity
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Sold reports how many seats of the class have been purchased.
func (s SeatClass) Sold() int { return s.Capacity - s.RemainingQuantity }

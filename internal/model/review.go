package model

import "time"

// Review is a member's rating of an event they purchased tickets for.
// One review per member per event.
type Review struct {
	ID        uint64    `json:"id"`         // reviews.id
	EventID   uint64    `json:"event_id"`   // reviews.event_id
	BuyerID   string    `json:"buyer_id"`   // reviews.buyer_id
	Rating    int       `json:"rating"`     // reviews.rating, 1..5
	Comment   string    `json:"comment"`    // reviews.comment
	CreatedAt time.Time `json:"created_at"` // reviews.created_at
}

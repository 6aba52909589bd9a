// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the audit consumer of purchase.committed.
package queue

// PurchaseCommittedQueue is the durable queue every committed purchase is announced on.
const PurchaseCommittedQueue = "purchase.committed"

// PurchaseCommittedEvent is published after a purchase transaction commits.
// It contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type PurchaseCommittedEvent struct {
	PurchaseID       uint64 `json:"purchase_id"`
	BuyerID          string `json:"buyer_id"`
	EventID          uint64 `json:"event_id"`
	SeatClassID      uint64 `json:"seat_class_id"`
	Quantity         int    `json:"quantity"`
	UnitPriceCents   int64  `json:"unit_price_cents"`
	TotalPriceCents  int64  `json:"total_price_cents"`
	VerificationCode string `json:"verification_code"`
	CorrelationID    string `json:"correlation_id,omitempty"`
	PurchasedAt      string `json:"purchased_at"` // RFC3339, UTC
}

package model

import "time"

// Event is a ticketed happening that owns zero or more seat classes and reviews.
//
// Fields:
//  ID             – primary key identifier.
//  Name           – display name.
//  Category       – free-form grouping used by the catalog filter.
//  StartsAt       – when the event takes place (UTC).
//  Location       – venue description.
//  BasePriceCents – headline price shown in listings, in cents.
//  Description    – long text.
//  PosterRef      – optional reference to an externally stored poster.
type Event struct {
	ID             uint64    `json:"id"`               // events.id
	Name           string    `json:"name"`             // events.name
	Category       string    `json:"category"`         // events.category
	StartsAt       time.Time `json:"starts_at"`        // events.starts_at
	Location       string    `json:"location"`         // events.location
	BasePriceCents int64     `json:"base_price_cents"` // events.base_price_cents
	Description    string    `json:"description"`      // events.description
	PosterRef      *string   `json:"poster_ref"`       // events.poster_ref (nullable)
	CreatedAt      time.Time `json:"created_at"`       // events.created_at
	UpdatedAt      time.Time `json:"updated_at"`       // events.updated_at
}

// EventDetail is the public projection of an event together with its
// seat classes and review summary.
type EventDetail struct {
	Event
	SeatClasses   []SeatClass `json:"seat_classes"`
	ReviewCount   int         `json:"review_count"`
	AverageRating float64     `json:"average_rating"`
}

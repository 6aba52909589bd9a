package model

import "time"

// Inquiry statuses.
const (
	InquiryPending = "PENDING"
	InquiryReplied = "REPLIED"
)

// Inquiry is a message sent through the public contact form, optionally
// about a specific event.
type Inquiry struct {
	ID         uint64    `json:"id"`          // inquiries.id
	Name       *string   `json:"name"`        // inquiries.name (nullable)
	Email      string    `json:"email"`       // inquiries.email
	Subject    string    `json:"subject"`     // inquiries.subject
	Message    string    `json:"message"`     // inquiries.message
	EventID    *uint64   `json:"event_id"`    // inquiries.event_id (nullable)
	Status     string    `json:"status"`      // inquiries.status (PENDING, REPLIED)
	AdminNotes *string   `json:"admin_notes"` // inquiries.admin_notes (nullable)
	CreatedAt  time.Time `json:"created_at"`  // inquiries.created_at
}

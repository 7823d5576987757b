package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is the single post-resolution rating a student may leave on a ticket.
type Feedback struct {
	ID         string
	TicketID   string
	StudentRef string
	Rating     int
	Text       string
	CreatedAt  time.Time
}

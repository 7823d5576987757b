package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending     TicketStatus = "pending"
	TicketStatusApproaching TicketStatus = "approaching"
	TicketStatusResolving   TicketStatus = "resolving"
	TicketStatusCompleted   TicketStatus = "completed"
	TicketStatusClosed      TicketStatus = "closed"
)

var statusOrder = []TicketStatus{
	TicketStatusPending,
	TicketStatusApproaching,
	TicketStatusResolving,
	TicketStatusCompleted,
	TicketStatusClosed,
}

// IsValid reports whether s is one of the five lifecycle states.
func (s TicketStatus) IsValid() bool {
	return s.rank() >= 0
}

func (s TicketStatus) rank() int {
	for i, candidate := range statusOrder {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Next returns the following state in the linear lifecycle; closed has no successor.
func (s TicketStatus) Next() (TicketStatus, bool) {
	r := s.rank()
	if r < 0 || r == len(statusOrder)-1 {
		return "", false
	}
	return statusOrder[r+1], true
}

// IsSequentialStep reports whether next directly follows s. Any other move is accepted by
// ChangeStatus but reported as a jump.
func (s TicketStatus) IsSequentialStep(next TicketStatus) bool {
	following, ok := s.Next()
	return ok && following == next
}

// Ticket is a student-filed complaint.
type Ticket struct {
	ID            string
	TicketNumber  string
	StudentRef    string
	CategoryID    string
	SubCategoryID *string
	Title         string
	Description   string
	PhotoRef      *string
	Status        TicketStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ResolvedAt    *time.Time
	ClosedAt      *time.Time
}

// ApplyStatus moves the ticket to next and stamps the completion timestamps.
func (t *Ticket) ApplyStatus(next TicketStatus, at time.Time) {
	t.Status = next
	t.UpdatedAt = at
	switch next {
	case TicketStatusCompleted:
		stamp := at
		t.ResolvedAt = &stamp
	case TicketStatusClosed:
		stamp := at
		t.ClosedAt = &stamp
	}
}

// TicketFilter captures list parameters.
type TicketFilter struct {
	Statuses      []TicketStatus
	CategoryID    *string
	SubCategoryID *string
	AssigneeID    *string
	StudentRef    *string
	SearchTerm    *string
	Limit         int
	Offset        int
}

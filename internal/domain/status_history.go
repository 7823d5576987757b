package domain

import "time"

// AutoAssignNote is recorded when assignment advances a pending ticket.
const AutoAssignNote = "assigned to staff"

// StatusHistoryEntry is an immutable audit row for a single status transition.
type StatusHistoryEntry struct {
	ID           string
	TicketID     string
	OldStatus    TicketStatus
	NewStatus    TicketStatus
	ChangedByRef string
	Notes        string
	CreatedAt    time.Time
}

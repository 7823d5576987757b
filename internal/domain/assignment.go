package domain

import "time"

// Assignment records one employee's responsibility for a ticket within an assignment batch.
type Assignment struct {
	ID            string
	TicketID      string
	EmployeeRef   string
	AssignedByRef string
	AssignedAt    time.Time
	Notes         string
	IsActive      bool
}

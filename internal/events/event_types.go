package events

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated           EventType = "ticket_created"
	EventTicketAssigned          EventType = "ticket_assigned"
	EventTicketStatusChanged     EventType = "ticket_status_changed"
	EventTicketCommentAdded      EventType = "ticket_comment_added"
	EventTicketFeedbackSubmitted EventType = "ticket_feedback_submitted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   string           `json:"id"`
	Role string           `json:"role"`
	Kind domain.ActorKind `json:"kind"`
}

// ActorFrom copies the token identity into event metadata.
func ActorFrom(actor domain.Actor) Actor {
	return Actor{ID: actor.ID, Role: actor.Role, Kind: actor.Kind}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber  string  `json:"ticket_number"`
	StudentRef    string  `json:"student_ref"`
	CategoryID    string  `json:"category_id"`
	SubCategoryID *string `json:"sub_category_id,omitempty"`
	Title         string  `json:"title"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	EmployeeRefs []string `json:"employee_refs"`
	Replaced     int64    `json:"replaced"`
	AutoAdvanced bool     `json:"auto_advanced"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus  domain.TicketStatus `json:"old_status"`
	NewStatus  domain.TicketStatus `json:"new_status"`
	Notes      string              `json:"notes,omitempty"`
	Sequential bool                `json:"sequential"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID   string            `json:"comment_id"`
	AuthorKind  domain.AuthorKind `json:"author_kind"`
	IsInternal  bool              `json:"is_internal"`
	TextPreview string            `json:"text_preview"`
}

// TicketFeedbackSubmittedPayload payload.
type TicketFeedbackSubmittedPayload struct {
	FeedbackID string `json:"feedback_id"`
	Rating     int    `json:"rating"`
}

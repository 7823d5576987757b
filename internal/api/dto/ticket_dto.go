package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CreateTicketRequest payload. Staff filing on behalf of a student supply admission_number.
type CreateTicketRequest struct {
	AdmissionNumber *string `json:"admission_number" validate:"omitempty,max=64"`
	CategoryID      string  `json:"category_id" validate:"required"`
	SubCategoryID   *string `json:"sub_category_id"`
	Title           string  `json:"title" validate:"required,max=200"`
	Description     string  `json:"description" validate:"required,max=5000"`
	PhotoRef        *string `json:"photo_ref" validate:"omitempty,max=512"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	EmployeeIDs []string `json:"employee_ids" validate:"required,min=1,dive,required"`
	Notes       string   `json:"notes" validate:"max=1000"`
}

// ChangeStatusRequest payload.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes" validate:"max=1000"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Text       string `json:"text" validate:"max=5000"`
	IsInternal bool   `json:"is_internal"`
}

// SubmitFeedbackRequest payload.
type SubmitFeedbackRequest struct {
	Rating int    `json:"rating"`
	Text   string `json:"text" validate:"max=2000"`
}

// TicketSummary response.
type TicketSummary struct {
	ID            string              `json:"id"`
	TicketNumber  string              `json:"ticket_number"`
	StudentRef    string              `json:"student_ref"`
	CategoryID    string              `json:"category_id"`
	SubCategoryID *string             `json:"sub_category_id"`
	Title         string              `json:"title"`
	Status        domain.TicketStatus `json:"status"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description string               `json:"description"`
	PhotoRef    *string              `json:"photo_ref"`
	ResolvedAt  *time.Time           `json:"resolved_at"`
	ClosedAt    *time.Time           `json:"closed_at"`
	Assignments []AssignmentResponse `json:"assignments"`
	Feedback    *FeedbackResponse    `json:"feedback"`
}

// AssignmentResponse is one row of an assignment batch.
type AssignmentResponse struct {
	ID            string    `json:"id"`
	EmployeeRef   string    `json:"employee_ref"`
	AssignedByRef string    `json:"assigned_by_ref"`
	AssignedAt    time.Time `json:"assigned_at"`
	Notes         string    `json:"notes,omitempty"`
	IsActive      bool      `json:"is_active"`
}

// AssignTicketResponse is the outcome of an assignment.
type AssignTicketResponse struct {
	Ticket       TicketSummary        `json:"ticket"`
	Assignments  []AssignmentResponse `json:"assignments"`
	Replaced     int64                `json:"replaced"`
	AutoAdvanced bool                 `json:"auto_advanced"`
}

// StatusHistoryResponse is an audit row.
type StatusHistoryResponse struct {
	ID           string              `json:"id"`
	OldStatus    domain.TicketStatus `json:"old_status"`
	NewStatus    domain.TicketStatus `json:"new_status"`
	ChangedByRef string              `json:"changed_by_ref"`
	Notes        string              `json:"notes,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

// CommentResponse represents a thread comment.
type CommentResponse struct {
	ID         string            `json:"id"`
	AuthorRef  string            `json:"author_ref"`
	AuthorKind domain.AuthorKind `json:"author_kind"`
	Text       string            `json:"text"`
	IsInternal bool              `json:"is_internal"`
	CreatedAt  time.Time         `json:"created_at"`
}

// FeedbackResponse is the post-resolution rating.
type FeedbackResponse struct {
	ID         string    `json:"id"`
	StudentRef string    `json:"student_ref"`
	Rating     int       `json:"rating"`
	Text       string    `json:"text,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

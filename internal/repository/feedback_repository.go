package repository

import (
	"context"

	"github.com/spec-kit/helpdesk/internal/domain"
)

type feedbackRepository struct {
	db DBTX
}

// NewFeedbackRepository builds repository.
func NewFeedbackRepository(db DBTX) FeedbackRepository {
	return &feedbackRepository{db: db}
}

// Create relies on the unique index on ticket_id; a second insert surfaces ErrDuplicate.
func (r *feedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	const query = `
        INSERT INTO ticket_feedback (ticket_id, student_ref, rating, feedback_text)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		feedback.TicketID,
		feedback.StudentRef,
		feedback.Rating,
		feedback.Text,
	).Scan(&feedback.ID, &feedback.CreatedAt)
	return classify(err)
}

func (r *feedbackRepository) GetByTicket(ctx context.Context, ticketID string) (*domain.Feedback, error) {
	const query = `
        SELECT id, ticket_id, student_ref, rating, feedback_text, created_at
        FROM ticket_feedback WHERE ticket_id=$1`
	var feedback domain.Feedback
	if err := r.db.QueryRow(ctx, query, ticketID).Scan(
		&feedback.ID,
		&feedback.TicketID,
		&feedback.StudentRef,
		&feedback.Rating,
		&feedback.Text,
		&feedback.CreatedAt,
	); err != nil {
		return nil, classify(err)
	}
	return &feedback, nil
}

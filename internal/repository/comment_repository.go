package repository

import (
	"context"

	"github.com/spec-kit/helpdesk/internal/domain"
)

type commentRepository struct {
	db DBTX
}

// NewCommentRepository builds repository.
func NewCommentRepository(db DBTX) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO ticket_comments (ticket_id, author_ref, author_kind, comment_text, is_internal)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		comment.TicketID,
		comment.AuthorRef,
		comment.AuthorKind,
		comment.Text,
		comment.IsInternal,
	).Scan(&comment.ID, &comment.CreatedAt)
	return classify(err)
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	const query = `
        SELECT id, ticket_id, author_ref, author_kind, comment_text, is_internal, created_at
        FROM ticket_comments WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.AuthorRef,
			&comment.AuthorKind,
			&comment.Text,
			&comment.IsInternal,
			&comment.CreatedAt,
		); err != nil {
			return nil, classify(err)
		}
		result = append(result, comment)
	}
	return result, classify(rows.Err())
}

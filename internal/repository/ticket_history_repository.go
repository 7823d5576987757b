package repository

import (
	"context"

	"github.com/spec-kit/helpdesk/internal/domain"
)

type statusHistoryRepository struct {
	db DBTX
}

// NewStatusHistoryRepository builds repository.
func NewStatusHistoryRepository(db DBTX) StatusHistoryRepository {
	return &statusHistoryRepository{db: db}
}

func (r *statusHistoryRepository) Create(ctx context.Context, entry *domain.StatusHistoryEntry) error {
	const query = `
        INSERT INTO ticket_status_history (ticket_id, old_status, new_status, changed_by_ref, notes)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		entry.TicketID,
		entry.OldStatus,
		entry.NewStatus,
		entry.ChangedByRef,
		entry.Notes,
	).Scan(&entry.ID, &entry.CreatedAt)
	return classify(err)
}

func (r *statusHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.StatusHistoryEntry, error) {
	const query = `
        SELECT id, ticket_id, old_status, new_status, changed_by_ref, notes, created_at
        FROM ticket_status_history WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var result []domain.StatusHistoryEntry
	for rows.Next() {
		var entry domain.StatusHistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.ChangedByRef,
			&entry.Notes,
			&entry.CreatedAt,
		); err != nil {
			return nil, classify(err)
		}
		result = append(result, entry)
	}
	return result, classify(rows.Err())
}

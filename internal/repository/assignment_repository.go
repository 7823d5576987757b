package repository

import (
	"context"

	"github.com/spec-kit/helpdesk/internal/domain"
)

type assignmentRepository struct {
	db DBTX
}

// NewAssignmentRepository builds repository.
func NewAssignmentRepository(db DBTX) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) DeactivateForTicket(ctx context.Context, ticketID string) (int64, error) {
	cmd, err := r.db.Exec(ctx,
		`UPDATE ticket_assignments SET is_active=FALSE WHERE ticket_id=$1 AND is_active`, ticketID)
	if err != nil {
		return 0, classify(err)
	}
	return cmd.RowsAffected(), nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *domain.Assignment) error {
	const query = `
        INSERT INTO ticket_assignments (ticket_id, employee_ref, assigned_by_ref, assigned_at, notes, is_active)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	err := r.db.QueryRow(ctx, query,
		assignment.TicketID,
		assignment.EmployeeRef,
		assignment.AssignedByRef,
		assignment.AssignedAt,
		assignment.Notes,
		assignment.IsActive,
	).Scan(&assignment.ID)
	return classify(err)
}

func (r *assignmentRepository) ListActive(ctx context.Context, ticketID string) ([]domain.Assignment, error) {
	return r.list(ctx, `
        SELECT id, ticket_id, employee_ref, assigned_by_ref, assigned_at, notes, is_active
        FROM ticket_assignments WHERE ticket_id=$1 AND is_active ORDER BY assigned_at ASC, id ASC`, ticketID)
}

func (r *assignmentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Assignment, error) {
	return r.list(ctx, `
        SELECT id, ticket_id, employee_ref, assigned_by_ref, assigned_at, notes, is_active
        FROM ticket_assignments WHERE ticket_id=$1 ORDER BY assigned_at ASC, id ASC`, ticketID)
}

func (r *assignmentRepository) list(ctx context.Context, query string, ticketID string) ([]domain.Assignment, error) {
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var result []domain.Assignment
	for rows.Next() {
		var assignment domain.Assignment
		if err := rows.Scan(
			&assignment.ID,
			&assignment.TicketID,
			&assignment.EmployeeRef,
			&assignment.AssignedByRef,
			&assignment.AssignedAt,
			&assignment.Notes,
			&assignment.IsActive,
		); err != nil {
			return nil, classify(err)
		}
		result = append(result, assignment)
	}
	return result, classify(rows.Err())
}

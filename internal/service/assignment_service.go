package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// AssignmentService replaces a ticket's assignment batch.
type AssignmentService struct {
	store      repository.Store
	authz      Authorizer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// AssignmentDependencies bundles collaborators for the assignment service.
type AssignmentDependencies struct {
	Store      repository.Store
	Authz      Authorizer
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// AssignmentResult is the ticket after assignment plus the new active batch.
type AssignmentResult struct {
	Ticket       *domain.Ticket
	Assignments  []domain.Assignment
	Replaced     int64
	AutoAdvanced bool
}

// NewAssignmentService constructs the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	clock := deps.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &AssignmentService{
		store:      deps.Store,
		authz:      deps.Authz,
		dispatcher: deps.Dispatcher,
		logger:     orNop(deps.Logger),
		now:        clock,
	}
}

// Assign deactivates the current batch and inserts one active row per employee in a single
// transaction. A pending ticket advances to approaching with an automatic history entry.
func (s *AssignmentService) Assign(ctx context.Context, actor domain.Actor, ticketID string, employeeRefs []string, notes string) (*AssignmentResult, error) {
	if err := s.authz.Require(ctx, actor, domain.ModuleTicketManagement, domain.OpWrite); err != nil {
		return nil, err
	}
	refs := dedupe(employeeRefs)
	if len(refs) == 0 {
		return nil, apperrors.NewValidationError("EMPTY_ASSIGNMENT", "at least one employee is required", nil)
	}
	notes = strings.TrimSpace(notes)

	result := &AssignmentResult{}
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		ticket, err := repos.Tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return storageErr(err, ticketNotFound(ticketID))
		}

		for _, ref := range refs {
			employee, err := repos.Employees.GetByID(ctx, ref)
			if err != nil || !employee.Active() {
				if err != nil && !isNotFound(err) {
					return storageErr(err, nil)
				}
				return apperrors.NewNotFound("UNKNOWN_EMPLOYEE", "employee", map[string]any{"employee_id": ref})
			}
			if !employee.Profile().Covers(ticket.CategoryID, ticket.SubCategoryID) {
				return apperrors.NewConflict("EMPLOYEE_OUT_OF_SCOPE", "employee is not assigned to the ticket category",
					map[string]any{"employee_id": ref, "category_id": ticket.CategoryID})
			}
		}

		replaced, err := repos.Assignments.DeactivateForTicket(ctx, ticket.ID)
		if err != nil {
			return storageErr(err, nil)
		}
		result.Replaced = replaced

		assignedAt := s.now()
		for _, ref := range refs {
			assignment := &domain.Assignment{
				TicketID:      ticket.ID,
				EmployeeRef:   ref,
				AssignedByRef: actor.ID,
				AssignedAt:    assignedAt,
				Notes:         notes,
				IsActive:      true,
			}
			if err := repos.Assignments.Create(ctx, assignment); err != nil {
				return storageErr(err, nil)
			}
			result.Assignments = append(result.Assignments, *assignment)
		}

		if ticket.Status == domain.TicketStatusPending {
			ticket.ApplyStatus(domain.TicketStatusApproaching, assignedAt)
			if err := repos.Tickets.UpdateStatus(ctx, ticket); err != nil {
				return storageErr(err, ticketNotFound(ticketID))
			}
			if err := repos.History.Create(ctx, &domain.StatusHistoryEntry{
				TicketID:     ticket.ID,
				OldStatus:    domain.TicketStatusPending,
				NewStatus:    domain.TicketStatusApproaching,
				ChangedByRef: actor.ID,
				Notes:        domain.AutoAssignNote,
			}); err != nil {
				return storageErr(err, nil)
			}
			result.AutoAdvanced = true
		}
		result.Ticket = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ticket assigned",
		zap.String("ticket_id", ticketID),
		zap.Strings("employee_refs", refs),
		zap.Int64("replaced", result.Replaced),
		zap.Bool("auto_advanced", result.AutoAdvanced))
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticketID,
		Actor:    events.ActorFrom(actor),
		Payload: events.TicketAssignedPayload{
			EmployeeRefs: refs,
			Replaced:     result.Replaced,
			AutoAdvanced: result.AutoAdvanced,
		},
	})
	if result.AutoAdvanced {
		publishEvent(ctx, s.dispatcher, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticketID,
			Actor:    events.ActorFrom(actor),
			Payload: events.TicketStatusChangedPayload{
				OldStatus:  domain.TicketStatusPending,
				NewStatus:  domain.TicketStatusApproaching,
				Notes:      domain.AutoAssignNote,
				Sequential: true,
			},
		})
	}
	return result, nil
}

// ActiveAssignments lists the current batch for a ticket.
func (s *AssignmentService) ActiveAssignments(ctx context.Context, actor domain.Actor, ticketID string) ([]domain.Assignment, error) {
	if err := s.authz.Require(ctx, actor, domain.ModuleTicketManagement, domain.OpRead); err != nil {
		return nil, err
	}
	assignments, err := s.store.Repos().Assignments.ListActive(ctx, ticketID)
	if err != nil {
		return nil, storageErr(err, nil)
	}
	return assignments, nil
}

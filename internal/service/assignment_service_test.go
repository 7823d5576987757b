package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

func activeRefs(assignments []domain.Assignment) []string {
	refs := make([]string, 0, len(assignments))
	for _, assignment := range assignments {
		refs = append(refs, assignment.EmployeeRef)
	}
	return refs
}

func TestAssignReplacesActiveBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hostel := f.category(t, "Hostel", nil)
	ticket := f.ticket(t, f.student("stu-1", "ADM-1"), hostel.ID, nil)
	e1, e2, e3 := f.worker(t, "e1"), f.worker(t, "e2"), f.worker(t, "e3")

	first, err := f.assignments.Assign(ctx, manager, ticket.ID, []string{e1.ID, e2.ID, e1.ID}, "")
	require.NoError(t, err)
	assert.Zero(t, first.Replaced)
	assert.ElementsMatch(t, []string{e1.ID, e2.ID}, activeRefs(first.Assignments))

	second, err := f.assignments.Assign(ctx, manager, ticket.ID, []string{e3.ID}, "handover")
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Replaced)
	assert.False(t, second.AutoAdvanced, "ticket already left pending")

	active, err := f.assignments.ActiveAssignments(ctx, staff, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{e3.ID}, activeRefs(active))
	assert.Equal(t, "handover", active[0].Notes)

	history, err := f.tickets.History(ctx, manager, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1, "only the first assignment advances the ticket")
}

func TestAssignDoesNotAdvanceLaterStatuses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hostel := f.category(t, "Hostel", nil)
	ticket := f.ticket(t, f.student("stu-1", "ADM-1"), hostel.ID, nil)
	_, err := f.tickets.ChangeStatus(ctx, manager, ticket.ID, domain.TicketStatusResolving, "")
	require.NoError(t, err)

	result, err := f.assignments.Assign(ctx, manager, ticket.ID, []string{f.worker(t, "e1").ID}, "")
	require.NoError(t, err)
	assert.False(t, result.AutoAdvanced)
	assert.Equal(t, domain.TicketStatusResolving, result.Ticket.Status)
}

func TestAssignRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hostel := f.category(t, "Hostel", nil)
	water := f.category(t, "Water Supply", &hostel.ID)
	library := f.category(t, "Library", nil)
	ticket := f.ticket(t, f.student("stu-1", "ADM-1"), hostel.ID, &water.ID)

	librarian := f.worker(t, "librarian", library.ID)
	retired := f.worker(t, "retired")
	require.NoError(t, f.employees.Deactivate(ctx, superAdmin, retired.ID))

	_, err := f.assignments.Assign(ctx, manager, ticket.ID, nil, "")
	assertCode(t, err, apperrors.KindValidation, "EMPTY_ASSIGNMENT")

	_, err = f.assignments.Assign(ctx, manager, "missing", []string{librarian.ID}, "")
	assertCode(t, err, apperrors.KindNotFound, "TICKET_NOT_FOUND")

	_, err = f.assignments.Assign(ctx, manager, ticket.ID, []string{"nobody"}, "")
	assertCode(t, err, apperrors.KindNotFound, "UNKNOWN_EMPLOYEE")

	_, err = f.assignments.Assign(ctx, manager, ticket.ID, []string{retired.ID}, "")
	assertCode(t, err, apperrors.KindNotFound, "UNKNOWN_EMPLOYEE")

	_, err = f.assignments.Assign(ctx, manager, ticket.ID, []string{librarian.ID}, "")
	assertCode(t, err, apperrors.KindConflict, "EMPLOYEE_OUT_OF_SCOPE")

	_, err = f.assignments.Assign(ctx, staff, ticket.ID, []string{librarian.ID}, "")
	assertCode(t, err, apperrors.KindAccessDenied, "ACCESS_DENIED")

	detail, err := f.tickets.Get(ctx, manager, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusPending, detail.Ticket.Status, "failed assignments leave no trace")
	assert.Empty(t, detail.Assignments)
}

func TestFailedReassignKeepsCurrentBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hostel := f.category(t, "Hostel", nil)
	library := f.category(t, "Library", nil)
	ticket := f.ticket(t, f.student("stu-1", "ADM-1"), hostel.ID, nil)
	e1, e2, e3 := f.worker(t, "e1"), f.worker(t, "e2"), f.worker(t, "e3")
	librarian := f.worker(t, "librarian", library.ID)

	_, err := f.assignments.Assign(ctx, manager, ticket.ID, []string{e1.ID, e2.ID}, "")
	require.NoError(t, err)

	_, err = f.assignments.Assign(ctx, manager, ticket.ID, []string{e3.ID, "nobody"}, "")
	assertCode(t, err, apperrors.KindNotFound, "UNKNOWN_EMPLOYEE")

	_, err = f.assignments.Assign(ctx, manager, ticket.ID, []string{e3.ID, librarian.ID}, "")
	assertCode(t, err, apperrors.KindConflict, "EMPLOYEE_OUT_OF_SCOPE")

	active, err := f.assignments.ActiveAssignments(ctx, staff, ticket.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{e1.ID, e2.ID}, activeRefs(active))

	all, err := f.store.Repos().Assignments.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, all, 2, "no rows written by the failed batches")
	for _, assignment := range all {
		assert.True(t, assignment.IsActive, assignment.EmployeeRef)
	}
}

func TestAssignHonoursSubCategoryScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hostel := f.category(t, "Hostel", nil)
	water := f.category(t, "Water Supply", &hostel.ID)
	ticket := f.ticket(t, f.student("stu-1", "ADM-1"), hostel.ID, &water.ID)

	plumber, err := f.employees.CreateWorker(ctx, superAdmin, WorkerInput{
		DisplayName:    "Plumber",
		Username:       "plumber",
		Password:       "correct-horse",
		SubCategoryIDs: []string{water.ID},
	})
	require.NoError(t, err)

	result, err := f.assignments.Assign(ctx, manager, ticket.ID, []string{plumber.ID}, "")
	require.NoError(t, err)
	assert.True(t, result.AutoAdvanced)
}

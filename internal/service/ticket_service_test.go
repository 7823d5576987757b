package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

func TestTicketLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var published []events.EventType
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketAssigned,
		events.EventTicketStatusChanged,
		events.EventTicketFeedbackSubmitted,
	} {
		f.dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			published = append(published, event.Type)
			return nil
		})
	}

	hostel := f.category(t, "Hostel", nil)
	water := f.category(t, "Water Supply", &hostel.ID)
	worker := f.worker(t, "plumber7", hostel.ID)
	student := f.student("stu-1", "ADM-2024-001")

	ticket := f.ticket(t, student, hostel.ID, &water.ID)
	assert.Equal(t, domain.TicketStatusPending, ticket.Status)
	assert.Equal(t, "stu-1", ticket.StudentRef)
	assert.NotEmpty(t, ticket.TicketNumber)

	history, err := f.tickets.History(ctx, student, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, history, "creation is not an audited transition")

	f.advance(time.Minute)
	result, err := f.assignments.Assign(ctx, manager, ticket.ID, []string{worker.ID}, "urgent")
	require.NoError(t, err)
	assert.True(t, result.AutoAdvanced)
	assert.Equal(t, domain.TicketStatusApproaching, result.Ticket.Status)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, worker.ID, result.Assignments[0].EmployeeRef)
	assert.Equal(t, manager.ID, result.Assignments[0].AssignedByRef)

	history, err = f.tickets.History(ctx, manager, ticket.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.TicketStatusPending, history[0].OldStatus)
	assert.Equal(t, domain.TicketStatusApproaching, history[0].NewStatus)
	assert.Equal(t, domain.AutoAssignNote, history[0].Notes)

	workerActor := domain.Actor{ID: worker.ID, Role: domain.RoleWorker, Kind: domain.ActorKindWorker}
	_, err = f.tickets.ChangeStatus(ctx, workerActor, ticket.ID, domain.TicketStatusResolving, "on site")
	require.NoError(t, err)

	f.advance(time.Hour)
	completed, err := f.tickets.ChangeStatus(ctx, workerActor, ticket.ID, domain.TicketStatusCompleted, "fixed valve")
	require.NoError(t, err)
	require.NotNil(t, completed.ResolvedAt)
	assert.True(t, completed.ResolvedAt.Equal(f.now))

	feedback, err := f.tickets.SubmitFeedback(ctx, student, ticket.ID, 4, " quick fix ")
	require.NoError(t, err)
	assert.Equal(t, 4, feedback.Rating)
	assert.Equal(t, "quick fix", feedback.Text)

	_, err = f.tickets.SubmitFeedback(ctx, student, ticket.ID, 5, "again")
	assertCode(t, err, apperrors.KindConflict, "DUPLICATE_FEEDBACK")

	detail, err := f.tickets.Get(ctx, student, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusCompleted, detail.Ticket.Status)
	require.NotNil(t, detail.Feedback)
	assert.Equal(t, 4, detail.Feedback.Rating)
	assert.Len(t, detail.Assignments, 1)

	history, err = f.tickets.History(ctx, manager, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, history, 3)

	assert.Equal(t, []events.EventType{
		events.EventTicketCreated,
		events.EventTicketAssigned,
		events.EventTicketStatusChanged,
		events.EventTicketStatusChanged,
		events.EventTicketStatusChanged,
		events.EventTicketFeedbackSubmitted,
	}, published)
}

func TestCreateTicketValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hostel := f.category(t, "Hostel", nil)
	water := f.category(t, "Water Supply", &hostel.ID)
	library := f.category(t, "Library", nil)
	closed, err := f.categories.Create(ctx, superAdmin, CategoryInput{Name: "Transport", IsActive: boolPtr(false)})
	require.NoError(t, err)
	student := f.student("stu-1", "ADM-1")

	tests := []struct {
		name  string
		input TicketCreateInput
		kind  apperrors.ErrorKind
		code  string
	}{
		{
			name:  "empty title",
			input: TicketCreateInput{CategoryID: hostel.ID, Title: "  ", Description: "d"},
			kind:  apperrors.KindValidation,
			code:  "EMPTY_TITLE",
		},
		{
			name:  "empty description",
			input: TicketCreateInput{CategoryID: hostel.ID, Title: "t"},
			kind:  apperrors.KindValidation,
			code:  "EMPTY_DESCRIPTION",
		},
		{
			name:  "unknown category",
			input: TicketCreateInput{CategoryID: "missing", Title: "t", Description: "d"},
			kind:  apperrors.KindValidation,
			code:  "INVALID_CATEGORY",
		},
		{
			name:  "sub-category as main category",
			input: TicketCreateInput{CategoryID: water.ID, Title: "t", Description: "d"},
			kind:  apperrors.KindValidation,
			code:  "INVALID_CATEGORY",
		},
		{
			name:  "sub-category of another root",
			input: TicketCreateInput{CategoryID: library.ID, SubCategoryID: &water.ID, Title: "t", Description: "d"},
			kind:  apperrors.KindValidation,
			code:  "INVALID_CATEGORY",
		},
		{
			name:  "inactive category",
			input: TicketCreateInput{CategoryID: closed.ID, Title: "t", Description: "d"},
			kind:  apperrors.KindValidation,
			code:  "INACTIVE_CATEGORY",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tickets.Create(ctx, student, tt.input)
			assertCode(t, err, tt.kind, tt.code)
		})
	}
}

func TestCreateTicketOnBehalfOfStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hostel := f.category(t, "Hostel", nil)
	f.student("stu-9", "ADM-9")

	input := TicketCreateInput{CategoryID: hostel.ID, Title: "Broken bed", Description: "Room 14"}
	_, err := f.tickets.Create(ctx, manager, input)
	assertCode(t, err, apperrors.KindValidation, "ADMISSION_NUMBER_REQUIRED")

	input.AdmissionNumber = strPtr("ADM-9")
	ticket, err := f.tickets.Create(ctx, manager, input)
	require.NoError(t, err)
	assert.Equal(t, "stu-9", ticket.StudentRef)

	_, err = f.tickets.Create(ctx, staff, input)
	assertCode(t, err, apperrors.KindAccessDenied, "ACCESS_DENIED")
}

func TestStudentOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hostel := f.category(t, "Hostel", nil)
	owner := f.student("stu-1", "ADM-1")
	other := f.student("stu-2", "ADM-2")
	ticket := f.ticket(t, owner, hostel.ID, nil)

	_, err := f.tickets.Get(ctx, other, ticket.ID)
	assertCode(t, err, apperrors.KindAccessDenied, "ACCESS_DENIED")

	_, err = f.tickets.AddComment(ctx, other, ticket.ID, "me too", false)
	assertCode(t, err, apperrors.KindAccessDenied, "ACCESS_DENIED")

	f.ticket(t, other, hostel.ID, nil)
	mine, err := f.tickets.List(ctx, owner, TicketListFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, ticket.ID, mine[0].ID)

	_, err = f.tickets.List(ctx, owner, TicketListFilter{StudentAdmission: strPtr("ADM-2")})
	assertCode(t, err, apperrors.KindAccessDenied, "ACCESS_DENIED")

	all, err := f.tickets.List(ctx, staff, TicketListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListTicketsFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hostel := f.category(t, "Hostel", nil)
	library := f.category(t, "Library", nil)
	student := f.student("stu-1", "ADM-1")
	f.ticket(t, student, hostel.ID, nil)
	second := f.ticket(t, student, library.ID, nil)

	byCategory, err := f.tickets.List(ctx, staff, TicketListFilter{CategoryID: &library.ID})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, second.ID, byCategory[0].ID)

	_, err = f.tickets.List(ctx, staff, TicketListFilter{Statuses: []domain.TicketStatus{"reopened"}})
	assertCode(t, err, apperrors.KindValidation, "INVALID_STATUS")

	_, err = f.tickets.List(ctx, domain.Actor{ID: "x", Role: "ghost", Kind: domain.ActorKindIdentity}, TicketListFilter{})
	assertCode(t, err, apperrors.KindAccessDenied, "ACCESS_DENIED")
}

func TestChangeStatusAcceptsJumpsAndLogsWarn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hostel := f.category(t, "Hostel", nil)
	ticket := f.ticket(t, f.student("stu-1", "ADM-1"), hostel.ID, nil)

	closed, err := f.tickets.ChangeStatus(ctx, manager, ticket.ID, domain.TicketStatusClosed, "duplicate report")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)
	assert.NotNil(t, closed.ClosedAt)

	warnings := f.logs.FilterLevelExact(zap.WarnLevel).FilterMessage("ticket status jumped outside the linear lifecycle")
	assert.Equal(t, 1, warnings.Len())

	_, err = f.tickets.ChangeStatus(ctx, manager, ticket.ID, "reopened", "")
	assertCode(t, err, apperrors.KindValidation, "INVALID_STATUS")

	_, err = f.tickets.ChangeStatus(ctx, manager, "missing", domain.TicketStatusResolving, "")
	assertCode(t, err, apperrors.KindNotFound, "TICKET_NOT_FOUND")

	history, err := f.tickets.History(ctx, manager, ticket.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "duplicate report", history[0].Notes)
}

func TestInternalComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hostel := f.category(t, "Hostel", nil)
	student := f.student("stu-1", "ADM-1")
	ticket := f.ticket(t, student, hostel.ID, nil)

	_, err := f.tickets.AddComment(ctx, student, ticket.ID, "   ", false)
	assertCode(t, err, apperrors.KindValidation, "EMPTY_COMMENT")

	fromStudent, err := f.tickets.AddComment(ctx, student, ticket.ID, "still leaking", true)
	require.NoError(t, err)
	assert.False(t, fromStudent.IsInternal, "students cannot post internal notes")
	assert.Equal(t, domain.AuthorKindStudent, fromStudent.AuthorKind)

	note, err := f.tickets.AddComment(ctx, staff, ticket.ID, "needs a spare part", true)
	require.NoError(t, err)
	assert.True(t, note.IsInternal)
	assert.Equal(t, domain.AuthorKindStaff, note.AuthorKind)

	thread, err := f.tickets.Comments(ctx, staff, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, thread, 2)

	thread, err = f.tickets.Comments(ctx, student, ticket.ID)
	require.NoError(t, err)
	visible := domain.VisibleToStudents(thread)
	require.Len(t, visible, 1)
	assert.Equal(t, "still leaking", visible[0].Text)

	_, err = f.tickets.AddComment(ctx, staff, "missing", "hello", false)
	assertCode(t, err, apperrors.KindNotFound, "TICKET_NOT_FOUND")
}

func TestSubmitFeedbackChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hostel := f.category(t, "Hostel", nil)
	owner := f.student("stu-1", "ADM-1")
	other := f.student("stu-2", "ADM-2")
	ticket := f.ticket(t, owner, hostel.ID, nil)

	_, err := f.tickets.SubmitFeedback(ctx, manager, ticket.ID, 5, "")
	assertCode(t, err, apperrors.KindAccessDenied, "ACCESS_DENIED")

	_, err = f.tickets.SubmitFeedback(ctx, owner, "missing", 0, "")
	assertCode(t, err, apperrors.KindValidation, "RATING_OUT_OF_RANGE")

	_, err = f.tickets.SubmitFeedback(ctx, owner, ticket.ID, 6, "")
	assertCode(t, err, apperrors.KindValidation, "RATING_OUT_OF_RANGE")

	_, err = f.tickets.SubmitFeedback(ctx, owner, "missing", 3, "")
	assertCode(t, err, apperrors.KindNotFound, "TICKET_NOT_FOUND")

	_, err = f.tickets.SubmitFeedback(ctx, other, ticket.ID, 3, "")
	assertCode(t, err, apperrors.KindAccessDenied, "NOT_OWNER")

	_, err = f.tickets.SubmitFeedback(ctx, owner, ticket.ID, 3, "")
	assertCode(t, err, apperrors.KindConflict, "TICKET_NOT_COMPLETED")

	_, err = f.tickets.ChangeStatus(ctx, manager, ticket.ID, domain.TicketStatusCompleted, "")
	require.NoError(t, err)
	_, err = f.tickets.SubmitFeedback(ctx, owner, ticket.ID, 1, "")
	require.NoError(t, err)
}

func TestTicketNumbersAreUnique(t *testing.T) {
	f := newFixture(t)
	hostel := f.category(t, "Hostel", nil)
	student := f.student("stu-1", "ADM-1")

	seen := make(map[string]bool)
	for i := 0; i < 25; i++ {
		ticket := f.ticket(t, student, hostel.ID, nil)
		assert.Regexp(t, `^TKT-2024-\d{6}-[0-9A-F]{4}$`, ticket.TicketNumber)
		assert.False(t, seen[ticket.TicketNumber], "duplicate %s", ticket.TicketNumber)
		seen[ticket.TicketNumber] = true
	}
}

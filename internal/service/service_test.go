package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk/internal/authz"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository/memory"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

type fixture struct {
	store       *memory.Store
	evaluator   *authz.Evaluator
	dispatcher  events.Dispatcher
	logs        *observer.ObservedLogs
	categories  *CategoryService
	roles       *RoleService
	employees   *EmployeeService
	tickets     *TicketService
	assignments *AssignmentService
	now         time.Time
}

var (
	superAdmin = domain.Actor{ID: "id-root", Role: domain.RoleSuperAdmin, Kind: domain.ActorKindIdentity}
	manager    = domain.Actor{ID: "id-manager", Role: domain.RoleManager, Kind: domain.ActorKindIdentity}
	staff      = domain.Actor{ID: "id-staff", Role: domain.RoleStaff, Kind: domain.ActorKindIdentity}
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	store := memory.NewStore()
	for _, role := range domain.SystemRoles() {
		role := role
		require.NoError(t, store.Repos().Roles.Create(ctx, &role))
	}

	f := &fixture{
		store:      store,
		logs:       logs,
		dispatcher: events.NewInMemoryDispatcher(logger),
		now:        time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	store.SetClock(clock)

	f.evaluator = authz.NewEvaluator(authz.EvaluatorDependencies{Store: store, Logger: logger})
	f.categories = NewCategoryService(CategoryDependencies{Store: store, Authz: f.evaluator, Logger: logger})
	f.roles = NewRoleService(RoleDependencies{Store: store, Authz: f.evaluator, Logger: logger})
	f.employees = NewEmployeeService(EmployeeDependencies{
		Store:      store,
		Authz:      f.evaluator,
		Logger:     logger,
		BcryptCost: bcrypt.MinCost,
	})
	f.tickets = NewTicketService(TicketDependencies{
		Store:      store,
		Authz:      f.evaluator,
		Dispatcher: f.dispatcher,
		Logger:     logger,
		Clock:      clock,
	})
	f.assignments = NewAssignmentService(AssignmentDependencies{
		Store:      store,
		Authz:      f.evaluator,
		Dispatcher: f.dispatcher,
		Logger:     logger,
		Clock:      clock,
	})
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// student seeds a directory entry and returns the matching token actor.
func (f *fixture) student(id, admission string) domain.Actor {
	f.store.AddStudent(domain.Student{ID: id, AdmissionNumber: admission, FullName: "Student " + admission, IsActive: true})
	number := admission
	return domain.Actor{ID: id, Role: domain.RoleStudent, AdmissionNumber: &number, Kind: domain.ActorKindIdentity}
}

func (f *fixture) category(t *testing.T, name string, parentID *string) *domain.Category {
	t.Helper()
	category, err := f.categories.Create(context.Background(), superAdmin, CategoryInput{Name: name, ParentID: parentID})
	require.NoError(t, err)
	return category
}

func (f *fixture) worker(t *testing.T, username string, categoryIDs ...string) *domain.Worker {
	t.Helper()
	worker, err := f.employees.CreateWorker(context.Background(), superAdmin, WorkerInput{
		DisplayName: "Worker " + username,
		Username:    username,
		Password:    "correct-horse",
		CategoryIDs: categoryIDs,
	})
	require.NoError(t, err)
	return worker
}

func (f *fixture) ticket(t *testing.T, actor domain.Actor, categoryID string, subCategoryID *string) *domain.Ticket {
	t.Helper()
	f.advance(time.Millisecond)
	ticket, err := f.tickets.Create(context.Background(), actor, TicketCreateInput{
		CategoryID:    categoryID,
		SubCategoryID: subCategoryID,
		Title:         "No water",
		Description:   "Taps on floor 2 are dry",
	})
	require.NoError(t, err)
	return ticket
}

func assertCode(t *testing.T, err error, kind apperrors.ErrorKind, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperrors.KindOf(err), "kind for %v", err)
	assert.Equal(t, code, apperrors.CodeOf(err), "code for %v", err)
}

func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

func TestWithinTxRollsBackOnError(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		ticket := &domain.Ticket{TicketNumber: "TKT-1", StudentRef: "s1", CategoryID: "c1", Status: domain.TicketStatusPending}
		require.NoError(t, repos.Tickets.Create(ctx, ticket))
		require.NoError(t, repos.History.Create(ctx, &domain.StatusHistoryEntry{TicketID: ticket.ID, NewStatus: domain.TicketStatusPending}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	tickets, err := store.Repos().Tickets.List(ctx, domain.TicketFilter{})
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestWithinTxCommits(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	var ticketID string

	err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		ticket := &domain.Ticket{TicketNumber: "TKT-2", StudentRef: "s1", CategoryID: "c1", Status: domain.TicketStatusPending}
		if err := repos.Tickets.Create(ctx, ticket); err != nil {
			return err
		}
		ticketID = ticket.ID
		return repos.Assignments.Create(ctx, &domain.Assignment{TicketID: ticket.ID, EmployeeRef: "e1", IsActive: true})
	})
	require.NoError(t, err)

	active, err := store.Repos().Assignments.ListActive(ctx, ticketID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "e1", active[0].EmployeeRef)

	assigned := "e1"
	tickets, err := store.Repos().Tickets.List(ctx, domain.TicketFilter{AssigneeID: &assigned})
	require.NoError(t, err)
	assert.Len(t, tickets, 1)
}

func TestUniqueConstraints(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	repos := store.Repos()

	require.NoError(t, repos.Roles.Create(ctx, &domain.Role{RoleName: "auditor", Permissions: domain.EmptyPermissions()}))
	err := repos.Roles.Create(ctx, &domain.Role{RoleName: "auditor", Permissions: domain.EmptyPermissions()})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	first := &domain.Worker{EmployeeProfile: domain.EmployeeProfile{Username: "fixer", IsActive: true}}
	require.NoError(t, repos.Employees.Create(ctx, first))
	second := &domain.Worker{EmployeeProfile: domain.EmployeeProfile{Username: "fixer", IsActive: true}}
	assert.ErrorIs(t, repos.Employees.Create(ctx, second), repository.ErrDuplicate)

	first.IsActive = false
	require.NoError(t, repos.Employees.Update(ctx, first))
	assert.NoError(t, repos.Employees.Create(ctx, second))

	require.NoError(t, repos.Feedback.Create(ctx, &domain.Feedback{TicketID: "t1", Rating: 4}))
	assert.ErrorIs(t, repos.Feedback.Create(ctx, &domain.Feedback{TicketID: "t1", Rating: 5}), repository.ErrDuplicate)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	repos := store.Repos()

	worker := &domain.Worker{EmployeeProfile: domain.EmployeeProfile{Username: "w", IsActive: true, CategoryIDs: []string{"c1"}}}
	require.NoError(t, repos.Employees.Create(ctx, worker))
	worker.CategoryIDs[0] = "mutated"

	loaded, err := repos.Employees.GetByID(ctx, worker.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, loaded.Profile().CategoryIDs)
	_, isWorker := loaded.(*domain.Worker)
	assert.True(t, isWorker)
}

func TestNotFound(t *testing.T) {
	repos := NewStore().Repos()
	ctx := context.Background()

	_, err := repos.Tickets.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repos.Employees.GetActiveByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repos.Categories.Delete(ctx, "missing"), repository.ErrNotFound)
}

func TestSeedingSurvivesConcurrentCommit(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})
	committed := make(chan error, 1)

	go func() {
		committed <- store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
			close(started)
			<-release
			return repos.Categories.Create(ctx, &domain.Category{Name: "Hostel", IsActive: true})
		})
	}()
	<-started

	seeded := make(chan struct{})
	go func() {
		store.AddIdentity(domain.Identity{ID: "id-lee", Username: "lee", Role: domain.RoleStaff, IsActive: true})
		store.AddStudent(domain.Student{ID: "stu-1", AdmissionNumber: "ADM-1", IsActive: true})
		close(seeded)
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	require.NoError(t, <-committed)
	<-seeded

	taken, err := store.Repos().Identities.UsernameExists(ctx, "lee")
	require.NoError(t, err)
	assert.True(t, taken, "identity seeded during a transaction is kept")

	categories, err := store.Repos().Categories.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

// Package memory is a process-local Store used when no database is configured and by tests.
// Transactions run against a cloned snapshot that replaces the live state only on success.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

type state struct {
	categories  map[string]domain.Category
	roles       map[string]domain.Role
	employees   map[string]domain.Employee
	tickets     map[string]domain.Ticket
	ticketOrder []string
	assignments []domain.Assignment
	history     []domain.StatusHistoryEntry
	comments    []domain.Comment
	feedback    map[string]domain.Feedback
	identities  map[string]domain.Identity
	overrides   map[string]map[domain.Module]domain.OperationOverride
	students    map[string]domain.Student
}

func newState() *state {
	return &state{
		categories: map[string]domain.Category{},
		roles:      map[string]domain.Role{},
		employees:  map[string]domain.Employee{},
		tickets:    map[string]domain.Ticket{},
		feedback:   map[string]domain.Feedback{},
		identities: map[string]domain.Identity{},
		overrides:  map[string]map[domain.Module]domain.OperationOverride{},
		students:   map[string]domain.Student{},
	}
}

func (st *state) clone() *state {
	out := newState()
	for id, c := range st.categories {
		out.categories[id] = cloneCategory(c)
	}
	for id, r := range st.roles {
		out.roles[id] = cloneRole(r)
	}
	for id, e := range st.employees {
		out.employees[id] = cloneEmployee(e)
	}
	for id, t := range st.tickets {
		out.tickets[id] = cloneTicket(t)
	}
	out.ticketOrder = append([]string(nil), st.ticketOrder...)
	out.assignments = append([]domain.Assignment(nil), st.assignments...)
	out.history = append([]domain.StatusHistoryEntry(nil), st.history...)
	out.comments = append([]domain.Comment(nil), st.comments...)
	for id, f := range st.feedback {
		out.feedback[id] = f
	}
	for id, i := range st.identities {
		out.identities[id] = i
	}
	for id, o := range st.overrides {
		out.overrides[id] = cloneOverrides(o)
	}
	for id, s := range st.students {
		out.students[id] = s
	}
	return out
}

// backend gives repositories serialized access to one state.
type backend interface {
	read(fn func(st *state) error) error
	write(fn func(st *state) error) error
	now() time.Time
}

// Store implements repository.Store in memory.
type Store struct {
	txMu  sync.Mutex
	mu    sync.RWMutex
	state *state
	clock func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{state: newState(), clock: func() time.Time { return time.Now().UTC() }}
}

// SetClock overrides the timestamp source.
func (s *Store) SetClock(clock func() time.Time) {
	s.clock = clock
}

func (s *Store) Repos() repository.Repositories {
	return bind(&sharedBackend{store: s})
}

// WithinTx serializes transactions. fn must only use the repositories it is handed;
// writing through Repos() from inside fn blocks forever.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()

	tx := &txBackend{state: snapshot, clock: s.clock}
	if err := fn(ctx, bind(tx)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = snapshot
	s.mu.Unlock()
	return nil
}

// AddIdentity seeds an account of the shared identity store.
func (s *Store) AddIdentity(identity domain.Identity) {
	s.seed(func(st *state) {
		st.identities[identity.ID] = identity
	})
}

// AddStudent seeds a student directory entry.
func (s *Store) AddStudent(student domain.Student) {
	s.seed(func(st *state) {
		st.students[student.ID] = student
	})
}

// SetPermissionOverrides replaces the per-identity grants.
func (s *Store) SetPermissionOverrides(identityID string, overrides map[domain.Module]domain.OperationOverride) {
	s.seed(func(st *state) {
		st.overrides[identityID] = cloneOverrides(overrides)
	})
}

// seed applies fn under the transaction lock so a concurrent commit cannot discard it.
func (s *Store) seed(fn func(st *state)) {
	_ = (&sharedBackend{store: s}).write(func(st *state) error {
		fn(st)
		return nil
	})
}

type sharedBackend struct {
	store *Store
}

func (b *sharedBackend) read(fn func(st *state) error) error {
	b.store.mu.RLock()
	defer b.store.mu.RUnlock()
	return fn(b.store.state)
}

func (b *sharedBackend) write(fn func(st *state) error) error {
	b.store.txMu.Lock()
	defer b.store.txMu.Unlock()
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	return fn(b.store.state)
}

func (b *sharedBackend) now() time.Time { return b.store.clock() }

type txBackend struct {
	mu    sync.Mutex
	state *state
	clock func() time.Time
}

func (b *txBackend) read(fn func(st *state) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return fn(b.state)
}

func (b *txBackend) write(fn func(st *state) error) error {
	return b.read(fn)
}

func (b *txBackend) now() time.Time { return b.clock() }

func bind(b backend) repository.Repositories {
	return repository.Repositories{
		Categories:  &categoryRepo{b: b},
		Roles:       &roleRepo{b: b},
		Employees:   &employeeRepo{b: b},
		Tickets:     &ticketRepo{b: b},
		Assignments: &assignmentRepo{b: b},
		History:     &historyRepo{b: b},
		Comments:    &commentRepo{b: b},
		Feedback:    &feedbackRepo{b: b},
		Identities:  &identityRepo{b: b},
		Students:    &studentRepo{b: b},
	}
}

var _ repository.Store = (*Store)(nil)

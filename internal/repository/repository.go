package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// Storage sentinels. Implementations wrap driver errors so services can branch without
// importing a driver.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("unique constraint violated")
	ErrTransient = errors.New("transient storage failure")
)

// CategoryRepository persists the complaint taxonomy.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Category, error)
	CountChildren(ctx context.Context, id string) (int, error)
}

// RoleRepository persists roles and their permission matrices.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	Update(ctx context.Context, role *domain.Role) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByName(ctx context.Context, roleName string) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
}

// EmployeeFilter defines query params for employee listing.
type EmployeeFilter struct {
	Kind       *domain.EmployeeKind
	Active     *bool
	CategoryID *string
	Limit      int
	Offset     int
}

// EmployeeRepository persists both employee shapes in one table discriminated by kind.
type EmployeeRepository interface {
	Create(ctx context.Context, employee domain.Employee) error
	Update(ctx context.Context, employee domain.Employee) error
	GetByID(ctx context.Context, id string) (domain.Employee, error)
	GetActiveByIdentityRef(ctx context.Context, identityRef string) (domain.Employee, error)
	GetActiveByUsername(ctx context.Context, username string) (domain.Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]domain.Employee, error)
	CountActiveByCustomRole(ctx context.Context, roleID string) (int, error)
	TouchByCustomRole(ctx context.Context, roleID string) (int64, error)
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, ticket *domain.Ticket) error
	List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error)
	CountByCategory(ctx context.Context, categoryID string) (int, error)
}

// AssignmentRepository stores assignment batches.
type AssignmentRepository interface {
	DeactivateForTicket(ctx context.Context, ticketID string) (int64, error)
	Create(ctx context.Context, assignment *domain.Assignment) error
	ListActive(ctx context.Context, ticketID string) ([]domain.Assignment, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Assignment, error)
}

// StatusHistoryRepository stores append-only audit entries.
type StatusHistoryRepository interface {
	Create(ctx context.Context, entry *domain.StatusHistoryEntry) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.StatusHistoryEntry, error)
}

// CommentRepository manages ticket thread comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error)
}

// FeedbackRepository stores post-resolution ratings.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
	GetByTicket(ctx context.Context, ticketID string) (*domain.Feedback, error)
}

// IdentityStore is the shared platform account store.
type IdentityStore interface {
	GetByID(ctx context.Context, id string) (*domain.Identity, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	ListActive(ctx context.Context) ([]domain.Identity, error)
	PermissionOverrides(ctx context.Context, identityID string) (map[domain.Module]domain.OperationOverride, error)
}

// StudentDirectory resolves students by admission number.
type StudentDirectory interface {
	GetByAdmissionNumber(ctx context.Context, admissionNumber string) (*domain.Student, error)
	GetByID(ctx context.Context, id string) (*domain.Student, error)
}

// Repositories bundles every repository bound to one connection or transaction.
type Repositories struct {
	Categories  CategoryRepository
	Roles       RoleRepository
	Employees   EmployeeRepository
	Tickets     TicketRepository
	Assignments AssignmentRepository
	History     StatusHistoryRepository
	Comments    CommentRepository
	Feedback    FeedbackRepository
	Identities  IdentityStore
	Students    StudentDirectory
}

// Store hands out repositories and runs commit-or-rollback units of work.
type Store interface {
	Repos() Repositories
	// WithinTx runs fn against repositories bound to a single transaction. A nil return commits;
	// any error rolls back every write made through the provided repositories.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

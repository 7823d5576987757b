package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %s", repository.ErrNotFound, kind, id)
}

func duplicate(what string) error {
	return fmt.Errorf("%w: %s", repository.ErrDuplicate, what)
}

type categoryRepo struct{ b backend }

func (r *categoryRepo) Create(_ context.Context, category *domain.Category) error {
	return r.b.write(func(st *state) error {
		now := r.b.now()
		category.ID = uuid.NewString()
		category.CreatedAt = now
		category.UpdatedAt = now
		st.categories[category.ID] = cloneCategory(*category)
		return nil
	})
}

func (r *categoryRepo) Update(_ context.Context, category *domain.Category) error {
	return r.b.write(func(st *state) error {
		existing, ok := st.categories[category.ID]
		if !ok {
			return notFound("category", category.ID)
		}
		category.CreatedAt = existing.CreatedAt
		category.UpdatedAt = r.b.now()
		st.categories[category.ID] = cloneCategory(*category)
		return nil
	})
}

func (r *categoryRepo) Delete(_ context.Context, id string) error {
	return r.b.write(func(st *state) error {
		if _, ok := st.categories[id]; !ok {
			return notFound("category", id)
		}
		delete(st.categories, id)
		return nil
	})
}

func (r *categoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	var out domain.Category
	err := r.b.read(func(st *state) error {
		category, ok := st.categories[id]
		if !ok {
			return notFound("category", id)
		}
		out = cloneCategory(category)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *categoryRepo) List(_ context.Context, activeOnly bool) ([]domain.Category, error) {
	var out []domain.Category
	err := r.b.read(func(st *state) error {
		for _, category := range st.categories {
			if activeOnly && !category.IsActive {
				continue
			}
			out = append(out, cloneCategory(category))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, err
}

func (r *categoryRepo) CountChildren(_ context.Context, id string) (int, error) {
	count := 0
	err := r.b.read(func(st *state) error {
		for _, category := range st.categories {
			if category.ParentID != nil && *category.ParentID == id {
				count++
			}
		}
		return nil
	})
	return count, err
}

type roleRepo struct{ b backend }

func nameTaken(st *state, name, exceptID string) bool {
	for id, role := range st.roles {
		if id != exceptID && role.RoleName == name {
			return true
		}
	}
	return false
}

func (r *roleRepo) Create(_ context.Context, role *domain.Role) error {
	return r.b.write(func(st *state) error {
		if nameTaken(st, role.RoleName, "") {
			return duplicate("roles_role_name_key")
		}
		now := r.b.now()
		role.ID = uuid.NewString()
		role.CreatedAt = now
		role.UpdatedAt = now
		st.roles[role.ID] = cloneRole(*role)
		return nil
	})
}

func (r *roleRepo) Update(_ context.Context, role *domain.Role) error {
	return r.b.write(func(st *state) error {
		existing, ok := st.roles[role.ID]
		if !ok {
			return notFound("role", role.ID)
		}
		if nameTaken(st, role.RoleName, role.ID) {
			return duplicate("roles_role_name_key")
		}
		role.CreatedAt = existing.CreatedAt
		role.IsSystemRole = existing.IsSystemRole
		role.IsUnrestricted = existing.IsUnrestricted
		role.UpdatedAt = r.b.now()
		st.roles[role.ID] = cloneRole(*role)
		return nil
	})
}

func (r *roleRepo) Delete(_ context.Context, id string) error {
	return r.b.write(func(st *state) error {
		if _, ok := st.roles[id]; !ok {
			return notFound("role", id)
		}
		delete(st.roles, id)
		return nil
	})
}

func (r *roleRepo) GetByID(_ context.Context, id string) (*domain.Role, error) {
	return r.find(func(role domain.Role) bool { return role.ID == id }, id)
}

func (r *roleRepo) GetByName(_ context.Context, roleName string) (*domain.Role, error) {
	return r.find(func(role domain.Role) bool { return role.RoleName == roleName }, roleName)
}

func (r *roleRepo) find(match func(domain.Role) bool, key string) (*domain.Role, error) {
	var out *domain.Role
	err := r.b.read(func(st *state) error {
		for _, role := range st.roles {
			if match(role) {
				found := cloneRole(role)
				out = &found
				return nil
			}
		}
		return notFound("role", key)
	})
	return out, err
}

func (r *roleRepo) List(_ context.Context) ([]domain.Role, error) {
	var out []domain.Role
	err := r.b.read(func(st *state) error {
		for _, role := range st.roles {
			out = append(out, cloneRole(role))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsSystemRole != out[j].IsSystemRole {
			return out[i].IsSystemRole
		}
		return out[i].RoleName < out[j].RoleName
	})
	return out, err
}

type employeeRepo struct{ b backend }

func identityRefOf(e domain.Employee) string {
	if manager, ok := e.(*domain.Manager); ok {
		return manager.IdentityRef
	}
	return ""
}

// checkUnique mirrors the partial unique indexes on active username and active identity_ref.
func checkUnique(st *state, candidate domain.Employee) error {
	if !candidate.Active() {
		return nil
	}
	username := candidate.Profile().Username
	ref := identityRefOf(candidate)
	for id, existing := range st.employees {
		if id == candidate.EmployeeID() || !existing.Active() {
			continue
		}
		if username != "" && existing.Profile().Username == username {
			return duplicate("employees_active_username_idx")
		}
		if ref != "" && identityRefOf(existing) == ref {
			return duplicate("employees_active_identity_ref_idx")
		}
	}
	return nil
}

func (r *employeeRepo) Create(_ context.Context, employee domain.Employee) error {
	return r.b.write(func(st *state) error {
		profile := employee.Profile()
		if err := checkUnique(st, employee); err != nil {
			return err
		}
		now := r.b.now()
		profile.ID = uuid.NewString()
		profile.CreatedAt = now
		profile.UpdatedAt = now
		st.employees[profile.ID] = cloneEmployee(employee)
		return nil
	})
}

func (r *employeeRepo) Update(_ context.Context, employee domain.Employee) error {
	return r.b.write(func(st *state) error {
		profile := employee.Profile()
		existing, ok := st.employees[profile.ID]
		if !ok {
			return notFound("employee", profile.ID)
		}
		if existing.Kind() != employee.Kind() {
			return fmt.Errorf("employee %s kind is immutable", profile.ID)
		}
		if err := checkUnique(st, employee); err != nil {
			return err
		}
		profile.CreatedAt = existing.Profile().CreatedAt
		profile.UpdatedAt = r.b.now()
		st.employees[profile.ID] = cloneEmployee(employee)
		return nil
	})
}

func (r *employeeRepo) GetByID(_ context.Context, id string) (domain.Employee, error) {
	return r.find(func(e domain.Employee) bool { return e.EmployeeID() == id }, id)
}

func (r *employeeRepo) GetActiveByIdentityRef(_ context.Context, identityRef string) (domain.Employee, error) {
	return r.find(func(e domain.Employee) bool {
		return e.Active() && identityRefOf(e) == identityRef
	}, identityRef)
}

func (r *employeeRepo) GetActiveByUsername(_ context.Context, username string) (domain.Employee, error) {
	return r.find(func(e domain.Employee) bool {
		return e.Active() && e.Profile().Username == username
	}, username)
}

func (r *employeeRepo) find(match func(domain.Employee) bool, key string) (domain.Employee, error) {
	var out domain.Employee
	err := r.b.read(func(st *state) error {
		for _, employee := range st.employees {
			if match(employee) {
				out = cloneEmployee(employee)
				return nil
			}
		}
		return notFound("employee", key)
	})
	return out, err
}

func (r *employeeRepo) List(_ context.Context, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	var out []domain.Employee
	err := r.b.read(func(st *state) error {
		for _, employee := range st.employees {
			if filter.Kind != nil && employee.Kind() != *filter.Kind {
				continue
			}
			if filter.Active != nil && employee.Active() != *filter.Active {
				continue
			}
			if filter.CategoryID != nil && !contains(employee.Profile().CategoryIDs, *filter.CategoryID) {
				continue
			}
			out = append(out, cloneEmployee(employee))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	return page(out, limit, filter.Offset), err
}

func (r *employeeRepo) CountActiveByCustomRole(_ context.Context, roleID string) (int, error) {
	count := 0
	err := r.b.read(func(st *state) error {
		for _, employee := range st.employees {
			roleRef := employee.Profile().CustomRoleID
			if employee.Active() && roleRef != nil && *roleRef == roleID {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *employeeRepo) TouchByCustomRole(_ context.Context, roleID string) (int64, error) {
	var touched int64
	err := r.b.write(func(st *state) error {
		now := r.b.now()
		for _, employee := range st.employees {
			profile := employee.Profile()
			if profile.CustomRoleID != nil && *profile.CustomRoleID == roleID {
				profile.UpdatedAt = now
				touched++
			}
		}
		return nil
	})
	return touched, err
}

type ticketRepo struct{ b backend }

func (r *ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	return r.b.write(func(st *state) error {
		for _, existing := range st.tickets {
			if existing.TicketNumber == ticket.TicketNumber {
				return duplicate("tickets_ticket_number_key")
			}
		}
		now := r.b.now()
		ticket.ID = uuid.NewString()
		ticket.CreatedAt = now
		ticket.UpdatedAt = now
		st.tickets[ticket.ID] = cloneTicket(*ticket)
		st.ticketOrder = append(st.ticketOrder, ticket.ID)
		return nil
	})
}

func (r *ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	var out domain.Ticket
	err := r.b.read(func(st *state) error {
		ticket, ok := st.tickets[id]
		if !ok {
			return notFound("ticket", id)
		}
		out = cloneTicket(ticket)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByIDForUpdate needs no row lock here: transactions are already serialized.
func (r *ticketRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r *ticketRepo) UpdateStatus(_ context.Context, ticket *domain.Ticket) error {
	return r.b.write(func(st *state) error {
		existing, ok := st.tickets[ticket.ID]
		if !ok {
			return notFound("ticket", ticket.ID)
		}
		existing.Status = ticket.Status
		existing.UpdatedAt = ticket.UpdatedAt
		existing.ResolvedAt = ticket.ResolvedAt
		existing.ClosedAt = ticket.ClosedAt
		st.tickets[ticket.ID] = cloneTicket(existing)
		return nil
	})
}

func (r *ticketRepo) List(_ context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	err := r.b.read(func(st *state) error {
		for i := len(st.ticketOrder) - 1; i >= 0; i-- {
			ticket := st.tickets[st.ticketOrder[i]]
			if matchesTicket(st, ticket, filter) {
				out = append(out, cloneTicket(ticket))
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	return page(out, limit, filter.Offset), err
}

func matchesTicket(st *state, ticket domain.Ticket, filter domain.TicketFilter) bool {
	if filter.StudentRef != nil && ticket.StudentRef != *filter.StudentRef {
		return false
	}
	if filter.CategoryID != nil && ticket.CategoryID != *filter.CategoryID {
		return false
	}
	if filter.SubCategoryID != nil && (ticket.SubCategoryID == nil || *ticket.SubCategoryID != *filter.SubCategoryID) {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if ticket.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.AssigneeID != nil {
		assigned := false
		for _, a := range st.assignments {
			if a.TicketID == ticket.ID && a.IsActive && a.EmployeeRef == *filter.AssigneeID {
				assigned = true
				break
			}
		}
		if !assigned {
			return false
		}
	}
	if filter.SearchTerm != nil {
		term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
		if term != "" &&
			!strings.Contains(strings.ToLower(ticket.Title), term) &&
			!strings.Contains(strings.ToLower(ticket.Description), term) &&
			!strings.Contains(strings.ToLower(ticket.TicketNumber), term) {
			return false
		}
	}
	return true
}

func (r *ticketRepo) CountByCategory(_ context.Context, categoryID string) (int, error) {
	count := 0
	err := r.b.read(func(st *state) error {
		for _, ticket := range st.tickets {
			if ticket.CategoryID == categoryID || (ticket.SubCategoryID != nil && *ticket.SubCategoryID == categoryID) {
				count++
			}
		}
		return nil
	})
	return count, err
}

type assignmentRepo struct{ b backend }

func (r *assignmentRepo) DeactivateForTicket(_ context.Context, ticketID string) (int64, error) {
	var affected int64
	err := r.b.write(func(st *state) error {
		for i := range st.assignments {
			if st.assignments[i].TicketID == ticketID && st.assignments[i].IsActive {
				st.assignments[i].IsActive = false
				affected++
			}
		}
		return nil
	})
	return affected, err
}

func (r *assignmentRepo) Create(_ context.Context, assignment *domain.Assignment) error {
	return r.b.write(func(st *state) error {
		assignment.ID = uuid.NewString()
		if assignment.AssignedAt.IsZero() {
			assignment.AssignedAt = r.b.now()
		}
		st.assignments = append(st.assignments, *assignment)
		return nil
	})
}

func (r *assignmentRepo) ListActive(_ context.Context, ticketID string) ([]domain.Assignment, error) {
	return r.list(ticketID, true)
}

func (r *assignmentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Assignment, error) {
	return r.list(ticketID, false)
}

func (r *assignmentRepo) list(ticketID string, activeOnly bool) ([]domain.Assignment, error) {
	var out []domain.Assignment
	err := r.b.read(func(st *state) error {
		for _, a := range st.assignments {
			if a.TicketID != ticketID || (activeOnly && !a.IsActive) {
				continue
			}
			out = append(out, a)
		}
		return nil
	})
	return out, err
}

type historyRepo struct{ b backend }

func (r *historyRepo) Create(_ context.Context, entry *domain.StatusHistoryEntry) error {
	return r.b.write(func(st *state) error {
		entry.ID = uuid.NewString()
		entry.CreatedAt = r.b.now()
		st.history = append(st.history, *entry)
		return nil
	})
}

func (r *historyRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.StatusHistoryEntry, error) {
	var out []domain.StatusHistoryEntry
	err := r.b.read(func(st *state) error {
		for _, entry := range st.history {
			if entry.TicketID == ticketID {
				out = append(out, entry)
			}
		}
		return nil
	})
	return out, err
}

type commentRepo struct{ b backend }

func (r *commentRepo) Create(_ context.Context, comment *domain.Comment) error {
	return r.b.write(func(st *state) error {
		comment.ID = uuid.NewString()
		comment.CreatedAt = r.b.now()
		st.comments = append(st.comments, *comment)
		return nil
	})
}

func (r *commentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	var out []domain.Comment
	err := r.b.read(func(st *state) error {
		for _, comment := range st.comments {
			if comment.TicketID == ticketID {
				out = append(out, comment)
			}
		}
		return nil
	})
	return out, err
}

type feedbackRepo struct{ b backend }

func (r *feedbackRepo) Create(_ context.Context, feedback *domain.Feedback) error {
	return r.b.write(func(st *state) error {
		if _, exists := st.feedback[feedback.TicketID]; exists {
			return duplicate("ticket_feedback_ticket_id_key")
		}
		feedback.ID = uuid.NewString()
		feedback.CreatedAt = r.b.now()
		st.feedback[feedback.TicketID] = *feedback
		return nil
	})
}

func (r *feedbackRepo) GetByTicket(_ context.Context, ticketID string) (*domain.Feedback, error) {
	var out domain.Feedback
	err := r.b.read(func(st *state) error {
		feedback, ok := st.feedback[ticketID]
		if !ok {
			return notFound("feedback for ticket", ticketID)
		}
		out = feedback
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type identityRepo struct{ b backend }

func (r *identityRepo) GetByID(_ context.Context, id string) (*domain.Identity, error) {
	var out domain.Identity
	err := r.b.read(func(st *state) error {
		identity, ok := st.identities[id]
		if !ok {
			return notFound("identity", id)
		}
		out = identity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *identityRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	exists := false
	err := r.b.read(func(st *state) error {
		for _, identity := range st.identities {
			if identity.Username == username {
				exists = true
				return nil
			}
		}
		return nil
	})
	return exists, err
}

func (r *identityRepo) ListActive(_ context.Context) ([]domain.Identity, error) {
	var out []domain.Identity
	err := r.b.read(func(st *state) error {
		for _, identity := range st.identities {
			if identity.IsActive && identity.Role != domain.RoleStudent {
				out = append(out, identity)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out, err
}

func (r *identityRepo) PermissionOverrides(_ context.Context, identityID string) (map[domain.Module]domain.OperationOverride, error) {
	var out map[domain.Module]domain.OperationOverride
	err := r.b.read(func(st *state) error {
		out = cloneOverrides(st.overrides[identityID])
		return nil
	})
	return out, err
}

type studentRepo struct{ b backend }

func (r *studentRepo) GetByAdmissionNumber(_ context.Context, admissionNumber string) (*domain.Student, error) {
	return r.find(func(s domain.Student) bool { return s.AdmissionNumber == admissionNumber }, admissionNumber)
}

func (r *studentRepo) GetByID(_ context.Context, id string) (*domain.Student, error) {
	return r.find(func(s domain.Student) bool { return s.ID == id }, id)
}

func (r *studentRepo) find(match func(domain.Student) bool, key string) (*domain.Student, error) {
	var out *domain.Student
	err := r.b.read(func(st *state) error {
		for _, student := range st.students {
			if match(student) {
				found := student
				out = &found
				return nil
			}
		}
		return notFound("student", key)
	})
	return out, err
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

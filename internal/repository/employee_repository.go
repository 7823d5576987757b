package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
)

type employeeRepository struct {
	db DBTX
}

// NewEmployeeRepository builds repository.
func NewEmployeeRepository(db DBTX) EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `id, kind, display_name, username, identity_ref, password_hash, contact_phone,
               custom_role_id, category_ids, sub_category_ids, is_active, created_at, updated_at`

// employeeRow is the flat table shape; kind selects which optional columns are meaningful.
type employeeRow struct {
	kind         domain.EmployeeKind
	profile      domain.EmployeeProfile
	identityRef  *string
	passwordHash *string
	contactPhone *string
}

func toRow(employee domain.Employee) employeeRow {
	row := employeeRow{kind: employee.Kind(), profile: *employee.Profile()}
	switch e := employee.(type) {
	case *domain.Manager:
		row.identityRef = &e.IdentityRef
	case *domain.Worker:
		row.passwordHash = &e.PasswordHash
		row.contactPhone = &e.ContactPhone
	}
	if row.profile.CategoryIDs == nil {
		row.profile.CategoryIDs = []string{}
	}
	if row.profile.SubCategoryIDs == nil {
		row.profile.SubCategoryIDs = []string{}
	}
	return row
}

func (row employeeRow) employee() (domain.Employee, error) {
	switch row.kind {
	case domain.EmployeeKindManager:
		manager := &domain.Manager{EmployeeProfile: row.profile}
		if row.identityRef != nil {
			manager.IdentityRef = *row.identityRef
		}
		return manager, nil
	case domain.EmployeeKindWorker:
		worker := &domain.Worker{EmployeeProfile: row.profile}
		if row.passwordHash != nil {
			worker.PasswordHash = *row.passwordHash
		}
		if row.contactPhone != nil {
			worker.ContactPhone = *row.contactPhone
		}
		return worker, nil
	}
	return nil, fmt.Errorf("unknown employee kind %q", row.kind)
}

func (r *employeeRepository) Create(ctx context.Context, employee domain.Employee) error {
	row := toRow(employee)
	const query = `
        INSERT INTO employees (kind, display_name, username, identity_ref, password_hash, contact_phone,
            custom_role_id, category_ids, sub_category_ids, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	profile := employee.Profile()
	err := r.db.QueryRow(ctx, query,
		row.kind,
		row.profile.DisplayName,
		row.profile.Username,
		row.identityRef,
		row.passwordHash,
		row.contactPhone,
		row.profile.CustomRoleID,
		row.profile.CategoryIDs,
		row.profile.SubCategoryIDs,
		row.profile.IsActive,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	return classify(err)
}

func (r *employeeRepository) Update(ctx context.Context, employee domain.Employee) error {
	row := toRow(employee)
	const query = `
        UPDATE employees SET display_name=$1, password_hash=COALESCE($2, password_hash),
            contact_phone=COALESCE($3, contact_phone), custom_role_id=$4, category_ids=$5,
            sub_category_ids=$6, is_active=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	profile := employee.Profile()
	err := r.db.QueryRow(ctx, query,
		row.profile.DisplayName,
		row.passwordHash,
		row.contactPhone,
		row.profile.CustomRoleID,
		row.profile.CategoryIDs,
		row.profile.SubCategoryIDs,
		row.profile.IsActive,
		row.profile.ID,
	).Scan(&profile.UpdatedAt)
	return classify(err)
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (domain.Employee, error) {
	return r.fetchSingle(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id=$1`, id)
}

func (r *employeeRepository) GetActiveByIdentityRef(ctx context.Context, identityRef string) (domain.Employee, error) {
	return r.fetchSingle(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE identity_ref=$1 AND is_active`, identityRef)
}

func (r *employeeRepository) GetActiveByUsername(ctx context.Context, username string) (domain.Employee, error) {
	return r.fetchSingle(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE username=$1 AND is_active`, username)
}

func (r *employeeRepository) List(ctx context.Context, filter EmployeeFilter) ([]domain.Employee, error) {
	base := `SELECT ` + employeeColumns + ` FROM employees`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Kind != nil {
		args = append(args, *filter.Kind)
		clauses = append(clauses, fmt.Sprintf("kind=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("$%d = ANY(category_ids)", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY display_name ASC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var result []domain.Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, classify(err)
		}
		result = append(result, employee)
	}
	return result, classify(rows.Err())
}

func (r *employeeRepository) CountActiveByCustomRole(ctx context.Context, roleID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM employees WHERE custom_role_id=$1 AND is_active`, roleID,
	).Scan(&count)
	return count, classify(err)
}

func (r *employeeRepository) TouchByCustomRole(ctx context.Context, roleID string) (int64, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE employees SET updated_at=NOW() WHERE custom_role_id=$1`, roleID)
	if err != nil {
		return 0, classify(err)
	}
	return cmd.RowsAffected(), nil
}

func (r *employeeRepository) fetchSingle(ctx context.Context, query string, arg any) (domain.Employee, error) {
	employee, err := scanEmployee(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, classify(err)
	}
	return employee, nil
}

func scanEmployee(row pgx.Row) (domain.Employee, error) {
	var rec employeeRow
	if err := row.Scan(
		&rec.profile.ID,
		&rec.kind,
		&rec.profile.DisplayName,
		&rec.profile.Username,
		&rec.identityRef,
		&rec.passwordHash,
		&rec.contactPhone,
		&rec.profile.CustomRoleID,
		&rec.profile.CategoryIDs,
		&rec.profile.SubCategoryIDs,
		&rec.profile.IsActive,
		&rec.profile.CreatedAt,
		&rec.profile.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return rec.employee()
}

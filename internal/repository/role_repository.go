package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
)

type roleRepository struct {
	db DBTX
}

// NewRoleRepository builds the repository.
func NewRoleRepository(db DBTX) RoleRepository {
	return &roleRepository{db: db}
}

const roleColumns = `id, role_name, display_name, description, permissions, is_system_role, is_unrestricted, is_active, created_at, updated_at`

func (r *roleRepository) Create(ctx context.Context, role *domain.Role) error {
	const query = `
        INSERT INTO roles (role_name, display_name, description, permissions, is_system_role, is_unrestricted, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		role.RoleName,
		role.DisplayName,
		role.Description,
		role.Permissions,
		role.IsSystemRole,
		role.IsUnrestricted,
		role.IsActive,
	).Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
	return classify(err)
}

func (r *roleRepository) Update(ctx context.Context, role *domain.Role) error {
	const query = `
        UPDATE roles SET role_name=$1, display_name=$2, description=$3, permissions=$4, is_active=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		role.RoleName,
		role.DisplayName,
		role.Description,
		role.Permissions,
		role.IsActive,
		role.ID,
	).Scan(&role.UpdatedAt)
	return classify(err)
}

func (r *roleRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM roles WHERE id=$1`, id)
	if err != nil {
		return classify(err)
	}
	if cmd.RowsAffected() == 0 {
		return classify(pgx.ErrNoRows)
	}
	return nil
}

func (r *roleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	return r.fetchSingle(ctx, `SELECT `+roleColumns+` FROM roles WHERE id=$1`, id)
}

func (r *roleRepository) GetByName(ctx context.Context, roleName string) (*domain.Role, error) {
	return r.fetchSingle(ctx, `SELECT `+roleColumns+` FROM roles WHERE role_name=$1`, roleName)
}

func (r *roleRepository) List(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.db.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY is_system_role DESC, role_name ASC`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var result []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := scanRole(rows, &role); err != nil {
			return nil, classify(err)
		}
		result = append(result, role)
	}
	return result, classify(rows.Err())
}

func (r *roleRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Role, error) {
	var role domain.Role
	if err := scanRole(r.db.QueryRow(ctx, query, arg), &role); err != nil {
		return nil, classify(err)
	}
	return &role, nil
}

// permissions is stored as JSONB; pgx encodes and decodes the map directly.
func scanRole(row pgx.Row, role *domain.Role) error {
	var permissions map[string]domain.OperationSet
	if err := row.Scan(
		&role.ID,
		&role.RoleName,
		&role.DisplayName,
		&role.Description,
		&permissions,
		&role.IsSystemRole,
		&role.IsUnrestricted,
		&role.IsActive,
		&role.CreatedAt,
		&role.UpdatedAt,
	); err != nil {
		return err
	}
	matrix, _, _ := domain.NormalizePermissions(filterKnownModules(permissions))
	role.Permissions = matrix
	return nil
}

// filterKnownModules drops keys for modules this build no longer recognizes.
func filterKnownModules(stored map[string]domain.OperationSet) map[string]domain.OperationSet {
	known := make(map[string]domain.OperationSet, len(stored))
	for key, set := range stored {
		if domain.Module(key).IsValid() {
			known[key] = set
		}
	}
	return known
}

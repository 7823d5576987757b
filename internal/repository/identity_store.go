package repository

import (
	"context"

	"github.com/spec-kit/helpdesk/internal/domain"
)

type identityStore struct {
	db DBTX
}

// NewIdentityStore reads the shared platform account tables.
func NewIdentityStore(db DBTX) IdentityStore {
	return &identityStore{db: db}
}

func (s *identityStore) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	const query = `SELECT id, username, display_name, role, is_active FROM users WHERE id=$1`
	var identity domain.Identity
	if err := s.db.QueryRow(ctx, query, id).Scan(
		&identity.ID,
		&identity.Username,
		&identity.DisplayName,
		&identity.Role,
		&identity.IsActive,
	); err != nil {
		return nil, classify(err)
	}
	return &identity, nil
}

func (s *identityStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username=$1)`, username).Scan(&exists)
	return exists, classify(err)
}

func (s *identityStore) ListActive(ctx context.Context) ([]domain.Identity, error) {
	const query = `
        SELECT id, username, display_name, role, is_active
        FROM users WHERE is_active AND role <> 'student' ORDER BY display_name ASC`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var result []domain.Identity
	for rows.Next() {
		var identity domain.Identity
		if err := rows.Scan(
			&identity.ID,
			&identity.Username,
			&identity.DisplayName,
			&identity.Role,
			&identity.IsActive,
		); err != nil {
			return nil, classify(err)
		}
		result = append(result, identity)
	}
	return result, classify(rows.Err())
}

// PermissionOverrides returns the sparse per-identity grants; a NULL column keeps the role value.
func (s *identityStore) PermissionOverrides(ctx context.Context, identityID string) (map[domain.Module]domain.OperationOverride, error) {
	const query = `
        SELECT module, can_read, can_write, can_update, can_delete
        FROM permission_overrides WHERE user_id=$1`
	rows, err := s.db.Query(ctx, query, identityID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	result := make(map[domain.Module]domain.OperationOverride)
	for rows.Next() {
		var (
			module   string
			override domain.OperationOverride
		)
		if err := rows.Scan(&module, &override.Read, &override.Write, &override.Update, &override.Delete); err != nil {
			return nil, classify(err)
		}
		if domain.Module(module).IsValid() {
			result[domain.Module(module)] = override
		}
	}
	return result, classify(rows.Err())
}

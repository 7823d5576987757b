package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
)

type categoryRepository struct {
	db DBTX
}

// NewCategoryRepository builds the repository.
func NewCategoryRepository(db DBTX) CategoryRepository {
	return &categoryRepository{db: db}
}

const categoryColumns = `id, name, parent_id, is_active, display_order, created_at, updated_at`

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	const query = `
        INSERT INTO complaint_categories (name, parent_id, is_active, display_order)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		category.Name,
		category.ParentID,
		category.IsActive,
		category.DisplayOrder,
	).Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	return classify(err)
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	const query = `
        UPDATE complaint_categories SET name=$1, parent_id=$2, is_active=$3, display_order=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		category.Name,
		category.ParentID,
		category.IsActive,
		category.DisplayOrder,
		category.ID,
	).Scan(&category.UpdatedAt)
	return classify(err)
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM complaint_categories WHERE id=$1`, id)
	if err != nil {
		return classify(err)
	}
	if cmd.RowsAffected() == 0 {
		return classify(pgx.ErrNoRows)
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM complaint_categories WHERE id=$1`
	var category domain.Category
	if err := scanCategory(r.db.QueryRow(ctx, query, id), &category); err != nil {
		return nil, classify(err)
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM complaint_categories`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY display_order ASC, name ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := scanCategory(rows, &category); err != nil {
			return nil, classify(err)
		}
		result = append(result, category)
	}
	return result, classify(rows.Err())
}

func (r *categoryRepository) CountChildren(ctx context.Context, id string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM complaint_categories WHERE parent_id=$1`, id).Scan(&count)
	return count, classify(err)
}

func scanCategory(row pgx.Row, category *domain.Category) error {
	return row.Scan(
		&category.ID,
		&category.Name,
		&category.ParentID,
		&category.IsActive,
		&category.DisplayOrder,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
}

package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// CategoryService manages the two-level complaint taxonomy.
type CategoryService struct {
	store  repository.Store
	authz  Authorizer
	logger *zap.Logger
}

// CategoryDependencies bundles collaborators for the category service.
type CategoryDependencies struct {
	Store  repository.Store
	Authz  Authorizer
	Logger *zap.Logger
}

// CategoryInput describes category creation.
type CategoryInput struct {
	Name         string
	ParentID     *string
	DisplayOrder int
	IsActive     *bool
}

// NewCategoryService constructs the service.
func NewCategoryService(deps CategoryDependencies) *CategoryService {
	return &CategoryService{store: deps.Store, authz: deps.Authz, logger: orNop(deps.Logger)}
}

func categoryNotFound(id string) error {
	return apperrors.NewNotFound("CATEGORY_NOT_FOUND", "category", map[string]any{"category_id": id})
}

func invalidParent(message, parentID string) error {
	return apperrors.NewValidationError("INVALID_PARENT", message, map[string]any{"parent_id": parentID})
}

// Create adds a root category or a sub-category under a root.
func (s *CategoryService) Create(ctx context.Context, actor domain.Actor, input CategoryInput) (*domain.Category, error) {
	if err := s.authz.Require(ctx, actor, domain.ModuleCategoryManagement, domain.OpWrite); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("EMPTY_NAME", "category name is required", nil)
	}

	repos := s.store.Repos()
	if input.ParentID != nil {
		if err := s.checkParent(ctx, repos, "", *input.ParentID); err != nil {
			return nil, err
		}
	}

	category := &domain.Category{
		Name:         name,
		ParentID:     input.ParentID,
		DisplayOrder: input.DisplayOrder,
		IsActive:     true,
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if err := repos.Categories.Create(ctx, category); err != nil {
		return nil, storageErr(err, nil)
	}
	s.logger.Info("category created", zap.String("category_id", category.ID), zap.Bool("root", category.IsRoot()))
	return category, nil
}

// Update applies a partial change. Moving a category re-runs the depth guard and is refused
// while tickets reference it.
func (s *CategoryService) Update(ctx context.Context, actor domain.Actor, id string, patch domain.CategoryPatch) (*domain.Category, error) {
	if err := s.authz.Require(ctx, actor, domain.ModuleCategoryManagement, domain.OpUpdate); err != nil {
		return nil, err
	}

	var updated *domain.Category
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		category, err := repos.Categories.GetByID(ctx, id)
		if err != nil {
			return storageErr(err, categoryNotFound(id))
		}

		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return apperrors.NewValidationError("EMPTY_NAME", "category name is required", nil)
			}
			category.Name = name
		}
		switch {
		case patch.ClearParent && category.ParentID != nil:
			if err := checkNotReferenced(ctx, repos, category.ID); err != nil {
				return err
			}
			category.ParentID = nil
		case !patch.ClearParent && patch.ParentID != nil && (category.ParentID == nil || *category.ParentID != *patch.ParentID):
			if err := s.checkParent(ctx, repos, category.ID, *patch.ParentID); err != nil {
				return err
			}
			if err := checkNotReferenced(ctx, repos, category.ID); err != nil {
				return err
			}
			parentID := *patch.ParentID
			category.ParentID = &parentID
		}
		if patch.IsActive != nil {
			category.IsActive = *patch.IsActive
		}
		if patch.DisplayOrder != nil {
			category.DisplayOrder = *patch.DisplayOrder
		}

		if err := repos.Categories.Update(ctx, category); err != nil {
			return storageErr(err, categoryNotFound(id))
		}
		updated = category
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// checkParent enforces depth <= 2: the parent must be a root, and a category that already
// has children cannot itself become a child.
func (s *CategoryService) checkParent(ctx context.Context, repos repository.Repositories, selfID, parentID string) error {
	if selfID != "" && parentID == selfID {
		return invalidParent("category cannot be its own parent", parentID)
	}
	parent, err := repos.Categories.GetByID(ctx, parentID)
	if err != nil {
		if isNotFound(err) {
			return invalidParent("parent category does not exist", parentID)
		}
		return storageErr(err, nil)
	}
	if !parent.IsRoot() {
		return invalidParent("parent category is itself a sub-category", parentID)
	}
	if selfID != "" {
		children, err := repos.Categories.CountChildren(ctx, selfID)
		if err != nil {
			return storageErr(err, nil)
		}
		if children > 0 {
			return invalidParent("category with sub-categories cannot be nested", parentID)
		}
	}
	return nil
}

// checkNotReferenced fails with IN_USE while any ticket points at the category. Tickets
// keep their category pair, so a referenced category can neither move nor go away.
func checkNotReferenced(ctx context.Context, repos repository.Repositories, id string) error {
	tickets, err := repos.Tickets.CountByCategory(ctx, id)
	if err != nil {
		return storageErr(err, nil)
	}
	if tickets > 0 {
		return apperrors.NewConflict("IN_USE", "category is referenced by tickets",
			map[string]any{"category_id": id, "tickets": tickets})
	}
	return nil
}

// Delete removes a category that has no children and no referencing tickets.
func (s *CategoryService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if err := s.authz.Require(ctx, actor, domain.ModuleCategoryManagement, domain.OpDelete); err != nil {
		return err
	}
	return s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Categories.GetByID(ctx, id); err != nil {
			return storageErr(err, categoryNotFound(id))
		}
		children, err := repos.Categories.CountChildren(ctx, id)
		if err != nil {
			return storageErr(err, nil)
		}
		if children > 0 {
			return apperrors.NewConflict("HAS_CHILDREN", "category has sub-categories",
				map[string]any{"category_id": id, "children": children})
		}
		if err := checkNotReferenced(ctx, repos, id); err != nil {
			return err
		}
		return storageErr(repos.Categories.Delete(ctx, id), categoryNotFound(id))
	})
}

// Get returns one category.
func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.store.Repos().Categories.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, categoryNotFound(id))
	}
	return category, nil
}

// List returns every category, flat.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.store.Repos().Categories.List(ctx, false)
	if err != nil {
		return nil, storageErr(err, nil)
	}
	return categories, nil
}

// ActiveTree returns active roots with their active children. Children of inactive roots are hidden.
func (s *CategoryService) ActiveTree(ctx context.Context) ([]domain.CategoryNode, error) {
	categories, err := s.store.Repos().Categories.List(ctx, true)
	if err != nil {
		return nil, storageErr(err, nil)
	}

	index := make(map[string]int)
	nodes := make([]domain.CategoryNode, 0)
	for _, category := range categories {
		if category.IsRoot() {
			index[category.ID] = len(nodes)
			nodes = append(nodes, domain.CategoryNode{Category: category, Children: []domain.Category{}})
		}
	}
	for _, category := range categories {
		if category.IsRoot() {
			continue
		}
		if pos, ok := index[*category.ParentID]; ok {
			nodes[pos].Children = append(nodes[pos].Children, category)
		}
	}
	return nodes, nil
}

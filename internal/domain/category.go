package domain

import "time"

// Category is a node of the two-level complaint taxonomy. A category with a
// ParentID is a sub-category and can never itself be a parent.
type Category struct {
	ID           string
	Name         string
	ParentID     *string
	IsActive     bool
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsRoot reports whether the category sits at the top level.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// CategoryNode is a root category with its children, used for hierarchical listings.
type CategoryNode struct {
	Category
	Children []Category
}

// CategoryPatch carries partial updates. ClearParent promotes a sub-category to a root.
type CategoryPatch struct {
	Name         *string
	ParentID     *string
	ClearParent  bool
	IsActive     *bool
	DisplayOrder *int
}

package dto

type CategoryFilters struct {
	TenantID        string
	ParentID        *string // Nil means ignore, Empty string means root categories
	IsActive        *bool
	IncludeChildren bool
	Page            int
	PageSize        int
}

type CreateCategoryInput struct {
	TenantID    string
	ActorID     string
	ParentID    *string
	Name        string
	Description string
	SortOrder   int
}

// UpdateCategoryInput replaces every mutable field. A nil ParentID moves the category to the root.
type UpdateCategoryInput struct {
	ID          string
	TenantID    string
	ActorID     string
	ParentID    *string
	Name        string
	Description string
	SortOrder   int
	IsActive    bool
}

package model

type Category struct {
	BaseModel
	TenantID    string     `db:"tenant_id" json:"tenant_id"`
	ParentID    *string    `db:"parent_id" json:"parent_id,omitempty"` // Nullable
	Name        string     `db:"name" json:"name"`
	Description *string    `db:"description" json:"description,omitempty"`
	SortOrder   int        `db:"sort_order" json:"sort_order"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	Children    []Category `db:"-" json:"children,omitempty"`
}

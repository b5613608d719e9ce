package dto

import (
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pricing"
)

type EntryFilters struct {
	TenantID    string          `json:"tenant_id"`
	CategoryID  string          `json:"category_id,omitempty"`
	Kind        model.EntryKind `json:"kind,omitempty"`
	IsActive    *bool           `json:"is_active,omitempty"`
	SearchQuery string          `json:"search_query,omitempty"` // name or sku
	SortBy      string          `json:"sort_by,omitempty"`      // name, created_at
	SortOrder   string          `json:"sort_order,omitempty"`   // asc, desc
	Page        int             `json:"page"`
	PageSize    int             `json:"page_size"`
}

// EntryView is an entry together with the prices in effect when it was read.
type EntryView struct {
	Entry         *model.CatalogEntry      `json:"entry"`
	Price         *pricing.Quote           `json:"price,omitempty"`
	VariantPrices map[string]pricing.Quote `json:"variant_prices,omitempty"`
}

type CreateEntryInput struct {
	TenantID   string
	ActorID    string
	CategoryID string
	Name       string
	IsActive   bool
	TrackStock bool
	Kind       model.EntryKind
	Simple     *model.SimpleItem
	Variable   *model.VariableItem
}

// UpdateEntryInput replaces the structural fields of an entry. Counters in the payload
// are ignored for existing units; variants without an id are added with their stock.
type UpdateEntryInput struct {
	ID         string
	TenantID   string
	ActorID    string
	CategoryID string
	Name       string
	IsActive   bool
	TrackStock bool
	Kind       model.EntryKind
	Simple     *model.SimpleItem
	Variable   *model.VariableItem
}

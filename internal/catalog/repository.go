package catalog

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// Repository stores catalog entries. Reads never return soft-deleted or foreign-tenant
// entries; they surface as NotFoundError instead.
type Repository interface {
	Create(ctx context.Context, entry *model.CatalogEntry) error
	FindByID(ctx context.Context, tenantID, id string) (*model.CatalogEntry, error)
	FindByIDs(ctx context.Context, tenantID string, ids []string) ([]model.CatalogEntry, error)
	FindAll(ctx context.Context, filters *dto.EntryFilters) ([]model.CatalogEntry, int, error)
	// Update writes identity, pricing and variant structure. Existing counters are never
	// written; variants new to the entry are inserted with their initial stock.
	Update(ctx context.Context, entry *model.CatalogEntry) error
	SoftDelete(ctx context.Context, tenantID, id, actorID string, at time.Time) error

	FindIDsByName(ctx context.Context, tenantID, name string) ([]string, error)
	FindIDsBySKU(ctx context.Context, tenantID, sku string) ([]string, error)
	ExistingIDs(ctx context.Context, tenantID string, ids []string) ([]string, error)
}

// Cache holds read-through copies of entries and filtered lists.
type Cache interface {
	GetEntry(ctx context.Context, tenantID, id string) (*model.CatalogEntry, bool)
	SetEntry(ctx context.Context, entry *model.CatalogEntry)
	GetList(ctx context.Context, filters *dto.EntryFilters) ([]model.CatalogEntry, int, bool)
	SetList(ctx context.Context, filters *dto.EntryFilters, entries []model.CatalogEntry, count int)
	InvalidateEntry(ctx context.Context, tenantID, id string) error
}

// Index is the full-text side of the catalog. Search returns matching entry ids in rank order.
type Index interface {
	IndexEntry(ctx context.Context, entry *model.CatalogEntry) error
	RemoveEntry(ctx context.Context, id string) error
	Search(ctx context.Context, filters *dto.EntryFilters) ([]string, int, error)
}

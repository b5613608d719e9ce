package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/catalog"
	"github.com/fekuna/omnipos-catalog-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/storage/memory"
)

// MemoryRepository keeps entries in a memory.Store shared with the inventory ledger.
// Entries are cloned on the way in and out so callers never alias live counters.
type MemoryRepository struct {
	store *memory.Store
}

func NewMemoryRepository(store *memory.Store) *MemoryRepository {
	return &MemoryRepository{store: store}
}

var _ catalog.Repository = (*MemoryRepository)(nil)

func live(d *memory.Data, tenantID, id string) (*model.CatalogEntry, bool) {
	e, ok := d.Entries[id]
	if !ok || e.IsDeleted || e.TenantID != tenantID {
		return nil, false
	}
	return e, true
}

// checkUnique plays the part of the partial unique indexes on name and simple sku.
func checkUnique(d *memory.Data, e *model.CatalogEntry) error {
	for id, other := range d.Entries {
		if id == e.ID || other.IsDeleted || other.TenantID != e.TenantID {
			continue
		}
		if strings.EqualFold(other.Name, e.Name) {
			return model.NewConflictError("name", e.Name)
		}
		s, ok := e.Simple()
		if !ok {
			continue
		}
		if os, ok := other.Simple(); ok && strings.EqualFold(os.SKU, s.SKU) {
			return model.NewConflictError("sku", s.SKU)
		}
	}
	return nil
}

func (r *MemoryRepository) Create(ctx context.Context, e *model.CatalogEntry) error {
	return r.store.Update(ctx, func(d *memory.Data) error {
		if _, exists := d.Entries[e.ID]; exists {
			return model.NewConflictError("id", e.ID)
		}
		if err := checkUnique(d, e); err != nil {
			return err
		}
		d.Entries[e.ID] = e.Clone()
		return nil
	})
}

func (r *MemoryRepository) FindByID(ctx context.Context, tenantID, id string) (*model.CatalogEntry, error) {
	var out *model.CatalogEntry
	err := r.store.View(ctx, func(d *memory.Data) error {
		e, ok := live(d, tenantID, id)
		if !ok {
			return model.NewNotFoundError("catalog_entry", id)
		}
		out = e.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MemoryRepository) FindByIDs(ctx context.Context, tenantID string, ids []string) ([]model.CatalogEntry, error) {
	var out []model.CatalogEntry
	err := r.store.View(ctx, func(d *memory.Data) error {
		for _, id := range ids {
			if e, ok := live(d, tenantID, id); ok {
				out = append(out, *e.Clone())
			}
		}
		return nil
	})
	return out, err
}

func (r *MemoryRepository) FindAll(ctx context.Context, f *dto.EntryFilters) ([]model.CatalogEntry, int, error) {
	var matched []model.CatalogEntry
	query := strings.ToLower(f.SearchQuery)
	err := r.store.View(ctx, func(d *memory.Data) error {
		for _, e := range d.Entries {
			if e.IsDeleted || e.TenantID != f.TenantID {
				continue
			}
			if f.CategoryID != "" && e.CategoryID != f.CategoryID {
				continue
			}
			if f.Kind != "" && e.Kind() != f.Kind {
				continue
			}
			if f.IsActive != nil && e.IsActive != *f.IsActive {
				continue
			}
			if query != "" && !matchesQuery(e, query) {
				continue
			}
			matched = append(matched, *e.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(matched, lessFunc(matched, f.SortBy, f.SortOrder))
	total := len(matched)
	return memory.Page(matched, f.Page, f.PageSize), total, nil
}

func matchesQuery(e *model.CatalogEntry, query string) bool {
	if strings.Contains(strings.ToLower(e.Name), query) {
		return true
	}
	s, ok := e.Simple()
	return ok && strings.Contains(strings.ToLower(s.SKU), query)
}

func lessFunc(entries []model.CatalogEntry, sortBy, order string) func(i, j int) bool {
	asc := strings.EqualFold(order, "asc")
	return func(i, j int) bool {
		a, b := entries[i], entries[j]
		if sortBy == "name" && !strings.EqualFold(a.Name, b.Name) {
			if asc {
				return strings.ToLower(a.Name) < strings.ToLower(b.Name)
			}
			return strings.ToLower(a.Name) > strings.ToLower(b.Name)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if asc && sortBy != "" {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	}
}

func (r *MemoryRepository) Update(ctx context.Context, e *model.CatalogEntry) error {
	return r.store.Update(ctx, func(d *memory.Data) error {
		current, ok := live(d, e.TenantID, e.ID)
		if !ok {
			return model.NewNotFoundError("catalog_entry", e.ID)
		}
		if err := checkUnique(d, e); err != nil {
			return err
		}
		next := e.Clone()
		carryCounters(current, next)
		next.BaseModel.CreatedAt = current.CreatedAt
		next.BaseModel.CreatedBy = current.CreatedBy
		d.Entries[e.ID] = next
		return nil
	})
}

// carryCounters copies the live counters of current onto the matching units of next.
func carryCounters(current, next *model.CatalogEntry) {
	switch it := next.Item.(type) {
	case *model.SimpleItem:
		if cur, ok := current.Simple(); ok {
			it.Stock = cur.Stock
		}
	case *model.VariableItem:
		cur, ok := current.Variable()
		if !ok {
			return
		}
		for i := range it.Variants {
			if v, found := cur.FindVariant(it.Variants[i].ID); found {
				it.Variants[i].Stock = v.Stock
			}
		}
	}
}

func (r *MemoryRepository) SoftDelete(ctx context.Context, tenantID, id, actorID string, at time.Time) error {
	return r.store.Update(ctx, func(d *memory.Data) error {
		e, ok := live(d, tenantID, id)
		if !ok {
			return model.NewNotFoundError("catalog_entry", id)
		}
		e.MarkDeleted(actorID, at)
		return nil
	})
}

func (r *MemoryRepository) FindIDsByName(ctx context.Context, tenantID, name string) ([]string, error) {
	return r.findIDs(ctx, tenantID, func(e *model.CatalogEntry) bool {
		return strings.EqualFold(e.Name, name)
	})
}

func (r *MemoryRepository) FindIDsBySKU(ctx context.Context, tenantID, sku string) ([]string, error) {
	return r.findIDs(ctx, tenantID, func(e *model.CatalogEntry) bool {
		s, ok := e.Simple()
		return ok && strings.EqualFold(s.SKU, sku)
	})
}

func (r *MemoryRepository) findIDs(ctx context.Context, tenantID string, match func(*model.CatalogEntry) bool) ([]string, error) {
	var ids []string
	err := r.store.View(ctx, func(d *memory.Data) error {
		for id, e := range d.Entries {
			if !e.IsDeleted && e.TenantID == tenantID && match(e) {
				ids = append(ids, id)
			}
		}
		return nil
	})
	sort.Strings(ids)
	return ids, err
}

func (r *MemoryRepository) ExistingIDs(ctx context.Context, tenantID string, ids []string) ([]string, error) {
	var found []string
	err := r.store.View(ctx, func(d *memory.Data) error {
		for _, id := range ids {
			if _, ok := live(d, tenantID, id); ok {
				found = append(found, id)
			}
		}
		return nil
	})
	return found, err
}

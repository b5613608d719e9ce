package repository

import (
	"context"
	"sort"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/category/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/storage/memory"
)

type MemoryRepository struct {
	store *memory.Store
}

func NewMemoryRepository(store *memory.Store) *MemoryRepository {
	return &MemoryRepository{store: store}
}

var _ category.Repository = (*MemoryRepository)(nil)

func live(d *memory.Data, tenantID, id string) (*model.Category, bool) {
	c, ok := d.Categories[id]
	if !ok || c.IsDeleted || c.TenantID != tenantID {
		return nil, false
	}
	return c, true
}

func clone(c *model.Category) *model.Category {
	out := *c
	out.Children = nil
	if c.ParentID != nil {
		p := *c.ParentID
		out.ParentID = &p
	}
	if c.Description != nil {
		d := *c.Description
		out.Description = &d
	}
	return &out
}

func (r *MemoryRepository) Create(ctx context.Context, c *model.Category) error {
	return r.store.Update(ctx, func(d *memory.Data) error {
		if _, exists := d.Categories[c.ID]; exists {
			return model.NewConflictError("id", c.ID)
		}
		d.Categories[c.ID] = clone(c)
		return nil
	})
}

func (r *MemoryRepository) FindByID(ctx context.Context, tenantID, id string) (*model.Category, error) {
	var out *model.Category
	err := r.store.View(ctx, func(d *memory.Data) error {
		c, ok := live(d, tenantID, id)
		if !ok {
			return model.NewNotFoundError("category", id)
		}
		out = clone(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MemoryRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	var matched []model.Category
	err := r.store.View(ctx, func(d *memory.Data) error {
		for _, c := range d.Categories {
			if c.IsDeleted || c.TenantID != f.TenantID {
				continue
			}
			if f.ParentID != nil {
				if *f.ParentID == "" && c.ParentID != nil {
					continue
				}
				if *f.ParentID != "" && (c.ParentID == nil || *c.ParentID != *f.ParentID) {
					continue
				}
			}
			if f.IsActive != nil && c.IsActive != *f.IsActive {
				continue
			}
			matched = append(matched, *clone(c))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	total := len(matched)
	return memory.Page(matched, f.Page, f.PageSize), total, nil
}

func (r *MemoryRepository) Update(ctx context.Context, c *model.Category) error {
	return r.store.Update(ctx, func(d *memory.Data) error {
		cur, ok := live(d, c.TenantID, c.ID)
		if !ok {
			return model.NewNotFoundError("category", c.ID)
		}
		next := clone(c)
		next.CreatedAt = cur.CreatedAt
		next.CreatedBy = cur.CreatedBy
		d.Categories[c.ID] = next
		return nil
	})
}

func (r *MemoryRepository) SoftDelete(ctx context.Context, tenantID, id, actorID string, at time.Time) error {
	return r.store.Update(ctx, func(d *memory.Data) error {
		c, ok := live(d, tenantID, id)
		if !ok {
			return model.NewNotFoundError("category", id)
		}
		c.MarkDeleted(actorID, at)
		for _, child := range d.Categories {
			if child.IsDeleted || child.TenantID != tenantID || child.ParentID == nil || *child.ParentID != id {
				continue
			}
			child.ParentID = nil
			child.Touch(actorID, at)
		}
		return nil
	})
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

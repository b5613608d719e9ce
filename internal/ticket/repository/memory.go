package repository

import (
	"context"
	"sort"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/storage/memory"
	"github.com/fekuna/omnipos-catalog-service/internal/ticket"
	"github.com/fekuna/omnipos-catalog-service/internal/ticket/dto"
)

type MemoryRepository struct {
	store *memory.Store
}

func NewMemoryRepository(store *memory.Store) *MemoryRepository {
	return &MemoryRepository{store: store}
}

var _ ticket.Repository = (*MemoryRepository)(nil)

func live(d *memory.Data, tenantID, id string) (*model.TicketType, bool) {
	t, ok := d.TicketTypes[id]
	if !ok || t.IsDeleted || t.TenantID != tenantID {
		return nil, false
	}
	return t, true
}

func (r *MemoryRepository) Create(ctx context.Context, t *model.TicketType) error {
	return r.store.Update(ctx, func(d *memory.Data) error {
		if _, exists := d.TicketTypes[t.ID]; exists {
			return model.NewConflictError("id", t.ID)
		}
		d.TicketTypes[t.ID] = t.Clone()
		return nil
	})
}

func (r *MemoryRepository) FindByID(ctx context.Context, tenantID, id string) (*model.TicketType, error) {
	var out *model.TicketType
	err := r.store.View(ctx, func(d *memory.Data) error {
		t, ok := live(d, tenantID, id)
		if !ok {
			return model.NewNotFoundError("ticket_type", id)
		}
		out = t.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MemoryRepository) FindAll(ctx context.Context, f *dto.TicketTypeFilters) ([]model.TicketType, int, error) {
	var matched []model.TicketType
	err := r.store.View(ctx, func(d *memory.Data) error {
		for _, t := range d.TicketTypes {
			if t.IsDeleted || t.TenantID != f.TenantID {
				continue
			}
			if f.EventID != "" && t.EventID != f.EventID {
				continue
			}
			if f.IsActive != nil && t.IsActive != *f.IsActive {
				continue
			}
			matched = append(matched, *t.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	total := len(matched)
	return memory.Page(matched, f.Page, f.PageSize), total, nil
}

// Update leaves Capacity and QuantitySold as the ledger last wrote them.
func (r *MemoryRepository) Update(ctx context.Context, t *model.TicketType) error {
	return r.store.Update(ctx, func(d *memory.Data) error {
		cur, ok := live(d, t.TenantID, t.ID)
		if !ok {
			return model.NewNotFoundError("ticket_type", t.ID)
		}
		next := t.Clone()
		next.EventID = cur.EventID
		next.Capacity = cur.Capacity
		next.QuantitySold = cur.QuantitySold
		next.CreatedAt = cur.CreatedAt
		next.CreatedBy = cur.CreatedBy
		d.TicketTypes[t.ID] = next
		return nil
	})
}

func (r *MemoryRepository) SoftDelete(ctx context.Context, tenantID, id, actorID string, at time.Time) error {
	return r.store.Update(ctx, func(d *memory.Data) error {
		t, ok := live(d, tenantID, id)
		if !ok {
			return model.NewNotFoundError("ticket_type", id)
		}
		t.MarkDeleted(actorID, at)
		return nil
	})
}

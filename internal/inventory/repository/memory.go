package repository

import (
	"context"
	"sort"

	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/storage/memory"
)

// MemoryRepository runs the same check-and-apply as the conditional UPDATE, inside the
// store's critical section.
type MemoryRepository struct {
	store *memory.Store
}

func NewMemoryRepository(store *memory.Store) *MemoryRepository {
	return &MemoryRepository{store: store}
}

var _ inventory.Repository = (*MemoryRepository)(nil)

// counter points at the live fields of one counter pair. Product style counters set
// stock; ticket style counters set capacity.
type counter struct {
	stock    *int64
	capacity *int64
	sold     *int64
}

func (c counter) remaining() int64 {
	if c.stock != nil {
		return *c.stock
	}
	return *c.capacity - *c.sold
}

func (c counter) snapshot(ref model.CounterRef) model.CounterSnapshot {
	return model.CounterSnapshot{Ref: ref, StockQuantity: c.remaining(), SoldQuantity: *c.sold}
}

func (c counter) allows(op ledgerOp, q int64) bool {
	switch op {
	case opReserve:
		return c.remaining() >= q
	case opRelease:
		return *c.sold >= q
	default:
		return c.remaining()+q >= 0
	}
}

func (c counter) apply(op ledgerOp, q int64) {
	switch op {
	case opReserve:
		*c.sold += q
		if c.stock != nil {
			*c.stock -= q
		}
	case opRelease:
		*c.sold -= q
		if c.stock != nil {
			*c.stock += q
		}
	default:
		if c.stock != nil {
			*c.stock += q
		} else {
			*c.capacity += q
		}
	}
}

func locate(d *memory.Data, ref model.CounterRef) (counter, error) {
	if ref.Scope == model.CounterScopeTicketType {
		tt, ok := d.TicketTypes[ref.ID]
		if !ok || tt.IsDeleted || tt.TenantID != ref.TenantID {
			return counter{}, notFound(ref)
		}
		return counter{capacity: &tt.Capacity, sold: &tt.QuantitySold}, nil
	}

	e, ok := d.Entries[ref.ID]
	if !ok || e.IsDeleted || e.TenantID != ref.TenantID {
		return counter{}, model.NewNotFoundError("catalog_entry", ref.ID)
	}
	switch it := e.Item.(type) {
	case *model.SimpleItem:
		if ref.VariantID != "" {
			return counter{}, notFound(ref)
		}
		return counter{stock: &it.StockQuantity, sold: &it.SoldQuantity}, nil
	case *model.VariableItem:
		if ref.VariantID == "" {
			return counter{}, model.NewStructuralError("variant_id", "required for VARIABLE entries", ref.ID)
		}
		v, ok := it.FindVariant(ref.VariantID)
		if !ok {
			return counter{}, notFound(ref)
		}
		return counter{stock: &v.StockQuantity, sold: &v.SoldQuantity}, nil
	}
	return counter{}, model.NewNotFoundError("catalog_entry", ref.ID)
}

func (r *MemoryRepository) mutate(ctx context.Context, ref model.CounterRef, op ledgerOp, q int64, m *model.InventoryMovement) (*model.CounterSnapshot, error) {
	var after model.CounterSnapshot
	err := r.store.Update(ctx, func(d *memory.Data) error {
		c, err := locate(d, ref)
		if err != nil {
			return err
		}
		if !c.allows(op, q) {
			switch op {
			case opRelease:
				return model.NewOverReleaseError(ref, q, *c.sold)
			case opAdjust:
				return model.NewInsufficientInventoryError(ref, -q, c.remaining())
			default:
				return model.NewInsufficientInventoryError(ref, q, c.remaining())
			}
		}

		c.apply(op, q)
		after = c.snapshot(ref)
		fillMovement(m, ref, op, q, &after)
		d.Movements = append(d.Movements, *m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &after, nil
}

func (r *MemoryRepository) Reserve(ctx context.Context, ref model.CounterRef, quantity int64, m *model.InventoryMovement) (*model.CounterSnapshot, error) {
	return r.mutate(ctx, ref, opReserve, quantity, m)
}

func (r *MemoryRepository) Release(ctx context.Context, ref model.CounterRef, quantity int64, m *model.InventoryMovement) (*model.CounterSnapshot, error) {
	return r.mutate(ctx, ref, opRelease, quantity, m)
}

func (r *MemoryRepository) Adjust(ctx context.Context, ref model.CounterRef, delta int64, m *model.InventoryMovement) (*model.CounterSnapshot, error) {
	return r.mutate(ctx, ref, opAdjust, delta, m)
}

func (r *MemoryRepository) GetCounter(ctx context.Context, ref model.CounterRef) (*model.CounterSnapshot, error) {
	var snap model.CounterSnapshot
	err := r.store.View(ctx, func(d *memory.Data) error {
		c, err := locate(d, ref)
		if err != nil {
			return err
		}
		snap = c.snapshot(ref)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *MemoryRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	var matched []model.InventoryMovement
	err := r.store.View(ctx, func(d *memory.Data) error {
		for _, m := range d.Movements {
			if m.TenantID != f.TenantID {
				continue
			}
			if f.Scope != "" && m.Scope != f.Scope {
				continue
			}
			if f.TargetID != "" && m.TargetID != f.TargetID {
				continue
			}
			if f.VariantID != "" && (m.VariantID == nil || *m.VariantID != f.VariantID) {
				continue
			}
			if f.MovementType != "" && m.MovementType != f.MovementType {
				continue
			}
			if f.ReferenceID != "" && (m.ReferenceID == nil || *m.ReferenceID != f.ReferenceID) {
				continue
			}
			matched = append(matched, m)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	return memory.Page(matched, f.Page, f.PageSize), total, nil
}

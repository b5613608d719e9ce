package inventory

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// Repository applies counter changes as one conditional write. Each mutating call fills
// the counter fields of movement and stores it in the same transaction as the change,
// and returns the counter state after the write.
type Repository interface {
	Reserve(ctx context.Context, ref model.CounterRef, quantity int64, movement *model.InventoryMovement) (*model.CounterSnapshot, error)
	Release(ctx context.Context, ref model.CounterRef, quantity int64, movement *model.InventoryMovement) (*model.CounterSnapshot, error)
	// Adjust moves stock (or ticket capacity) by delta without touching the sold count.
	Adjust(ctx context.Context, ref model.CounterRef, delta int64, movement *model.InventoryMovement) (*model.CounterSnapshot, error)

	GetCounter(ctx context.Context, ref model.CounterRef) (*model.CounterSnapshot, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
}

// EventPublisher announces counter changes to other services.
type EventPublisher interface {
	PublishStockChanged(ctx context.Context, movement *model.InventoryMovement, snapshot *model.CounterSnapshot) error
}

// SnapshotInvalidator drops cached copies of an entry whose counters changed.
type SnapshotInvalidator interface {
	InvalidateEntry(ctx context.Context, tenantID, entryID string) error
}

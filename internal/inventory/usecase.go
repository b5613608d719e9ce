package inventory

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type UseCase interface {
	Reserve(ctx context.Context, input *dto.LedgerInput) (*model.CounterSnapshot, error)
	Release(ctx context.Context, input *dto.LedgerInput) (*model.CounterSnapshot, error)
	Adjust(ctx context.Context, input *dto.AdjustInput) (*model.CounterSnapshot, error)
	GetCounter(ctx context.Context, ref model.CounterRef) (*model.CounterSnapshot, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
}

package usecase

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/clock"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type inventoryUseCase struct {
	repo      inventory.Repository
	cache     inventory.SnapshotInvalidator
	publisher inventory.EventPublisher
	clock     clock.Clock
	metrics   *metrics.Metrics
	logger    logger.ZapLogger
}

// NewInventoryUseCase wires the ledger. cache and publisher may be nil.
func NewInventoryUseCase(
	repo inventory.Repository,
	cache inventory.SnapshotInvalidator,
	publisher inventory.EventPublisher,
	clk clock.Clock,
	m *metrics.Metrics,
	log logger.ZapLogger,
) inventory.UseCase {
	return &inventoryUseCase{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		clock:     clk,
		metrics:   m,
		logger:    log,
	}
}

type ledgerCall func(ctx context.Context, ref model.CounterRef, q int64, m *model.InventoryMovement) (*model.CounterSnapshot, error)

func (uc *inventoryUseCase) Reserve(ctx context.Context, input *dto.LedgerInput) (*model.CounterSnapshot, error) {
	if input.Quantity <= 0 {
		return nil, model.NewStructuralError("quantity", "must be positive", input.Quantity)
	}
	return uc.apply(ctx, "reserve", model.MovementSale, uc.repo.Reserve, input.Ref, input.Quantity,
		input.ReferenceType, input.ReferenceID, input.ActorID)
}

func (uc *inventoryUseCase) Release(ctx context.Context, input *dto.LedgerInput) (*model.CounterSnapshot, error) {
	if input.Quantity <= 0 {
		return nil, model.NewStructuralError("quantity", "must be positive", input.Quantity)
	}
	return uc.apply(ctx, "release", model.MovementReturn, uc.repo.Release, input.Ref, input.Quantity,
		input.ReferenceType, input.ReferenceID, input.ActorID)
}

func (uc *inventoryUseCase) Adjust(ctx context.Context, input *dto.AdjustInput) (*model.CounterSnapshot, error) {
	if input.Delta == 0 {
		return nil, model.NewStructuralError("delta", "cannot be zero", input.Delta)
	}
	refType := input.ReferenceType
	if refType == "" {
		refType = "manual"
	}
	return uc.apply(ctx, "adjust", model.MovementAdjustment, uc.repo.Adjust, input.Ref, input.Delta,
		refType, input.ReferenceID, input.ActorID)
}

func (uc *inventoryUseCase) apply(
	ctx context.Context,
	operation string,
	movementType model.MovementType,
	call ledgerCall,
	ref model.CounterRef,
	quantity int64,
	referenceType, referenceID, actorID string,
) (*model.CounterSnapshot, error) {
	if err := validateRef(ref); err != nil {
		uc.metrics.RecordLedgerOperation(operation, string(ref.Scope), outcomeOf(err))
		return nil, err
	}

	movement := &model.InventoryMovement{
		ID:            uuid.New().String(),
		MovementType:  movementType,
		Quantity:      quantity,
		ReferenceType: optional(referenceType),
		ReferenceID:   optional(referenceID),
		CreatedBy:     model.ActorRef(actorID),
		CreatedAt:     uc.clock.Now(),
	}

	snap, err := call(ctx, ref, quantity, movement)
	uc.metrics.RecordLedgerOperation(operation, string(ref.Scope), outcomeOf(err))
	if err != nil {
		if outcomeOf(err) == metrics.OutcomeError {
			uc.logger.Error("ledger operation failed",
				zap.String("operation", operation),
				zap.String("ref", ref.String()),
				zap.Int64("quantity", quantity),
				zap.Error(err),
			)
		}
		return nil, err
	}

	uc.metrics.RecordStockMovement(string(ref.Scope), string(movementType), quantity)
	uc.logger.Info("ledger operation applied",
		zap.String("operation", operation),
		zap.String("tenant_id", ref.TenantID),
		zap.String("ref", ref.String()),
		zap.Int64("quantity", quantity),
		zap.Int64("stock_quantity", snap.StockQuantity),
		zap.Int64("sold_quantity", snap.SoldQuantity),
	)

	uc.afterCommit(ctx, ref, movement, snap)
	return snap, nil
}

// afterCommit runs side effects that must never undo or fail a committed ledger change.
func (uc *inventoryUseCase) afterCommit(ctx context.Context, ref model.CounterRef, movement *model.InventoryMovement, snap *model.CounterSnapshot) {
	if uc.cache != nil && ref.Scope == model.CounterScopeEntry {
		if err := uc.cache.InvalidateEntry(ctx, ref.TenantID, ref.ID); err != nil {
			uc.logger.Warn("failed to invalidate entry cache", zap.String("entry_id", ref.ID), zap.Error(err))
		}
	}
	if uc.publisher != nil {
		if err := uc.publisher.PublishStockChanged(ctx, movement, snap); err != nil {
			uc.logger.Error("failed to publish stock changed event",
				zap.String("ref", ref.String()),
				zap.String("movement_id", movement.ID),
				zap.Error(err),
			)
		}
	}
}

func (uc *inventoryUseCase) GetCounter(ctx context.Context, ref model.CounterRef) (*model.CounterSnapshot, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}
	return uc.repo.GetCounter(ctx, ref)
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	if filters.TenantID == "" {
		return nil, 0, model.NewStructuralError("tenant_id", "cannot be empty", filters.TenantID)
	}
	return uc.repo.ListMovements(ctx, filters)
}

// validateRef rejects refs no store could hold, so malformed ids never reach SQL.
func validateRef(ref model.CounterRef) error {
	if ref.TenantID == "" {
		return model.NewStructuralError("tenant_id", "cannot be empty", ref.TenantID)
	}
	if ref.Scope != model.CounterScopeEntry && ref.Scope != model.CounterScopeTicketType {
		return model.NewStructuralError("scope", "must be entry or ticket_type", ref.Scope)
	}
	if ref.Scope == model.CounterScopeTicketType && ref.VariantID != "" {
		return model.NewStructuralError("variant_id", "not allowed for ticket types", ref.VariantID)
	}
	if _, err := uuid.Parse(ref.ID); err != nil {
		if ref.Scope == model.CounterScopeTicketType {
			return model.NewNotFoundError("ticket_type", ref.ID)
		}
		return model.NewNotFoundError("catalog_entry", ref.ID)
	}
	if ref.VariantID != "" {
		if _, err := uuid.Parse(ref.VariantID); err != nil {
			return model.NewNotFoundError("variant", ref.VariantID)
		}
	}
	return nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case model.IsInsufficientInventoryError(err):
		return metrics.OutcomeInsufficient
	case model.IsOverReleaseError(err):
		return metrics.OutcomeOverRelease
	case model.IsNotFoundError(err):
		return metrics.OutcomeNotFound
	case model.IsStructuralError(err):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package usecase

import (
	"context"
	"strings"

	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	invdto "github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/clock"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/metrics"
	"github.com/fekuna/omnipos-catalog-service/internal/ticket"
	"github.com/fekuna/omnipos-catalog-service/internal/ticket/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ticketUseCase struct {
	repo    ticket.Repository
	ledger  inventory.UseCase
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  logger.ZapLogger
}

func NewTicketUseCase(repo ticket.Repository, ledger inventory.UseCase, clk clock.Clock, m *metrics.Metrics, log logger.ZapLogger) ticket.UseCase {
	return &ticketUseCase{
		repo:    repo,
		ledger:  ledger,
		clock:   clk,
		metrics: m,
		logger:  log,
	}
}

func (uc *ticketUseCase) CreateTicketType(ctx context.Context, input *dto.CreateTicketTypeInput) (*dto.TicketTypeView, error) {
	t := &model.TicketType{
		BaseModel: model.NewBaseModel(uuid.New().String(), input.ActorID, uc.clock.Now()),
		TenantID:  input.TenantID,
		EventID:   input.EventID,
		Name:      strings.TrimSpace(input.Name),
		Pricing:   input.Pricing,
		Capacity:  input.Capacity,
		IsActive:  input.IsActive,
	}
	if err := model.ValidateTicketType(t); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	uc.metrics.RecordCatalogOperation("create_ticket_type")
	uc.logger.Info("ticket type created",
		zap.String("tenant_id", t.TenantID),
		zap.String("ticket_type_id", t.ID),
		zap.String("event_id", t.EventID),
		zap.Int64("capacity", t.Capacity),
	)
	return uc.view(t), nil
}

func (uc *ticketUseCase) GetTicketType(ctx context.Context, tenantID, id string) (*dto.TicketTypeView, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.NewNotFoundError("ticket_type", id)
	}
	t, err := uc.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return uc.view(t), nil
}

func (uc *ticketUseCase) ListTicketTypes(ctx context.Context, filters *dto.TicketTypeFilters) ([]dto.TicketTypeView, int, error) {
	if filters.TenantID == "" {
		return nil, 0, model.NewStructuralError("tenant_id", "cannot be empty", filters.TenantID)
	}
	types, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, err
	}
	views := make([]dto.TicketTypeView, len(types))
	for i := range types {
		views[i] = *uc.view(&types[i])
	}
	return views, count, nil
}

func (uc *ticketUseCase) UpdateTicketType(ctx context.Context, input *dto.UpdateTicketTypeInput) (*dto.TicketTypeView, error) {
	if _, err := uuid.Parse(input.ID); err != nil {
		return nil, model.NewNotFoundError("ticket_type", input.ID)
	}
	existing, err := uc.repo.FindByID(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}

	updated := existing.Clone()
	updated.Name = strings.TrimSpace(input.Name)
	updated.Pricing = input.Pricing
	updated.IsActive = input.IsActive
	updated.Touch(input.ActorID, uc.clock.Now())
	if err := model.ValidateTicketType(updated); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, updated); err != nil {
		return nil, err
	}

	uc.metrics.RecordCatalogOperation("update_ticket_type")
	uc.logger.Info("ticket type updated", zap.String("ticket_type_id", updated.ID))
	return uc.view(updated), nil
}

func (uc *ticketUseCase) DeleteTicketType(ctx context.Context, tenantID, id, actorID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return model.NewNotFoundError("ticket_type", id)
	}
	if err := uc.repo.SoftDelete(ctx, tenantID, id, actorID, uc.clock.Now()); err != nil {
		return err
	}
	uc.metrics.RecordCatalogOperation("delete_ticket_type")
	uc.logger.Info("ticket type deleted", zap.String("tenant_id", tenantID), zap.String("ticket_type_id", id))
	return nil
}

func (uc *ticketUseCase) SellTicket(ctx context.Context, input *dto.TicketSaleInput) (*dto.TicketSale, error) {
	return uc.move(ctx, input, "ticket_sale", uc.ledger.Reserve)
}

func (uc *ticketUseCase) ReturnTicket(ctx context.Context, input *dto.TicketSaleInput) (*dto.TicketSale, error) {
	return uc.move(ctx, input, "ticket_return", uc.ledger.Release)
}

// move quotes the ticket type, then applies the counter change through the ledger.
func (uc *ticketUseCase) move(
	ctx context.Context,
	input *dto.TicketSaleInput,
	defaultRefType string,
	apply func(context.Context, *invdto.LedgerInput) (*model.CounterSnapshot, error),
) (*dto.TicketSale, error) {
	view, err := uc.GetTicketType(ctx, input.TenantID, input.TicketTypeID)
	if err != nil {
		return nil, err
	}

	refType := input.ReferenceType
	if refType == "" {
		refType = defaultRefType
	}
	snap, err := apply(ctx, &invdto.LedgerInput{
		Ref:           model.TicketCounter(input.TenantID, input.TicketTypeID),
		Quantity:      input.Quantity,
		ReferenceType: refType,
		ReferenceID:   input.ReferenceID,
		ActorID:       input.ActorID,
	})
	if err != nil {
		return nil, err
	}

	return &dto.TicketSale{
		Counter: snap,
		Price:   view.Price,
		Total:   view.Price.EffectivePrice.Mul(decimal.NewFromInt(input.Quantity)),
	}, nil
}

func (uc *ticketUseCase) view(t *model.TicketType) *dto.TicketTypeView {
	return &dto.TicketTypeView{TicketType: t, Price: t.Resolve(uc.clock.Now())}
}

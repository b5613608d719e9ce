package handler

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/rpc"
	"google.golang.org/grpc"
)

const ServiceName = "omnipos.catalog.v1.InventoryService"

type CounterRequest struct {
	Scope     model.CounterScope `json:"scope,omitempty"` // defaults to entry
	ID        string             `json:"id"`
	VariantID string             `json:"variant_id,omitempty"`
}

type LedgerRequest struct {
	CounterRequest
	Quantity      int64  `json:"quantity"`
	ReferenceType string `json:"reference_type,omitempty"`
	ReferenceID   string `json:"reference_id,omitempty"`
}

type AdjustRequest struct {
	CounterRequest
	Delta         int64  `json:"delta"`
	ReferenceType string `json:"reference_type,omitempty"`
	ReferenceID   string `json:"reference_id,omitempty"`
}

type CounterResponse struct {
	Counter *model.CounterSnapshot `json:"counter"`
}

type ListMovementsRequest struct {
	CounterRequest
	MovementType model.MovementType `json:"movement_type,omitempty"`
	ReferenceID  string             `json:"reference_id,omitempty"`
	Page         int                `json:"page"`
	PageSize     int                `json:"page_size"`
}

type ListMovementsResponse struct {
	Movements []model.InventoryMovement `json:"movements"`
	Total     int                       `json:"total"`
}

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(rpc.NewServiceDesc(ServiceName,
		rpc.Unary(ServiceName, "Reserve", h.Reserve),
		rpc.Unary(ServiceName, "Release", h.Release),
		rpc.Unary(ServiceName, "Adjust", h.Adjust),
		rpc.Unary(ServiceName, "GetCounter", h.GetCounter),
		rpc.Unary(ServiceName, "ListMovements", h.ListMovements),
	), h)
}

func (r CounterRequest) ref(tenantID string) model.CounterRef {
	scope := r.Scope
	if scope == "" {
		scope = model.CounterScopeEntry
	}
	return model.CounterRef{TenantID: tenantID, Scope: scope, ID: r.ID, VariantID: r.VariantID}
}

func (h *InventoryHandler) Reserve(ctx context.Context, req *LedgerRequest) (*CounterResponse, error) {
	return h.ledger(ctx, req, h.uc.Reserve)
}

func (h *InventoryHandler) Release(ctx context.Context, req *LedgerRequest) (*CounterResponse, error) {
	return h.ledger(ctx, req, h.uc.Release)
}

func (h *InventoryHandler) ledger(ctx context.Context, req *LedgerRequest, fn func(context.Context, *dto.LedgerInput) (*model.CounterSnapshot, error)) (*CounterResponse, error) {
	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		return nil, rpc.ErrMissingTenant
	}

	refType := req.ReferenceType
	if refType == "" {
		refType = "manual"
	}

	snap, err := fn(ctx, &dto.LedgerInput{
		Ref:           req.ref(tenantID),
		Quantity:      req.Quantity,
		ReferenceType: refType,
		ReferenceID:   req.ReferenceID,
		ActorID:       auth.GetActorID(ctx),
	})
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &CounterResponse{Counter: snap}, nil
}

func (h *InventoryHandler) Adjust(ctx context.Context, req *AdjustRequest) (*CounterResponse, error) {
	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		return nil, rpc.ErrMissingTenant
	}

	snap, err := h.uc.Adjust(ctx, &dto.AdjustInput{
		Ref:           req.ref(tenantID),
		Delta:         req.Delta,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		ActorID:       auth.GetActorID(ctx),
	})
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &CounterResponse{Counter: snap}, nil
}

func (h *InventoryHandler) GetCounter(ctx context.Context, req *CounterRequest) (*CounterResponse, error) {
	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		return nil, rpc.ErrMissingTenant
	}

	snap, err := h.uc.GetCounter(ctx, req.ref(tenantID))
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &CounterResponse{Counter: snap}, nil
}

func (h *InventoryHandler) ListMovements(ctx context.Context, req *ListMovementsRequest) (*ListMovementsResponse, error) {
	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		return nil, rpc.ErrMissingTenant
	}

	mvs, count, err := h.uc.ListMovements(ctx, &dto.MovementFilters{
		TenantID:     tenantID,
		Scope:        req.Scope,
		TargetID:     req.ID,
		VariantID:    req.VariantID,
		MovementType: req.MovementType,
		ReferenceID:  req.ReferenceID,
		Page:         req.Page,
		PageSize:     req.PageSize,
	})
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	if mvs == nil {
		mvs = []model.InventoryMovement{}
	}
	return &ListMovementsResponse{Movements: mvs, Total: count}, nil
}

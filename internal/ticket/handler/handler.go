package handler

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/rpc"
	"github.com/fekuna/omnipos-catalog-service/internal/ticket"
	"github.com/fekuna/omnipos-catalog-service/internal/ticket/dto"
	"google.golang.org/grpc"
)

const ServiceName = "omnipos.catalog.v1.TicketTypeService"

type CreateTicketTypeRequest struct {
	EventID  string        `json:"event_id"`
	Name     string        `json:"name"`
	Pricing  model.Pricing `json:"pricing"`
	Capacity int64         `json:"capacity"`
	IsActive *bool         `json:"is_active,omitempty"`
}

type UpdateTicketTypeRequest struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Pricing  model.Pricing `json:"pricing"`
	IsActive *bool         `json:"is_active,omitempty"`
}

type TicketTypeRequest struct {
	ID string `json:"id"`
}

type TicketTypeResponse struct {
	dto.TicketTypeView
}

type ListTicketTypesRequest struct {
	EventID  string `json:"event_id,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

type ListTicketTypesResponse struct {
	TicketTypes []dto.TicketTypeView `json:"ticket_types"`
	Total       int                  `json:"total"`
}

type TicketSaleRequest struct {
	ID            string `json:"id"`
	Quantity      int64  `json:"quantity"`
	ReferenceType string `json:"reference_type,omitempty"`
	ReferenceID   string `json:"reference_id,omitempty"`
}

type TicketSaleResponse struct {
	dto.TicketSale
}

type TicketHandler struct {
	uc     ticket.UseCase
	logger logger.ZapLogger
}

func NewTicketHandler(uc ticket.UseCase, log logger.ZapLogger) *TicketHandler {
	return &TicketHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *TicketHandler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(rpc.NewServiceDesc(ServiceName,
		rpc.Unary(ServiceName, "CreateTicketType", h.CreateTicketType),
		rpc.Unary(ServiceName, "GetTicketType", h.GetTicketType),
		rpc.Unary(ServiceName, "ListTicketTypes", h.ListTicketTypes),
		rpc.Unary(ServiceName, "UpdateTicketType", h.UpdateTicketType),
		rpc.Unary(ServiceName, "DeleteTicketType", h.DeleteTicketType),
		rpc.Unary(ServiceName, "SellTicket", h.SellTicket),
		rpc.Unary(ServiceName, "ReturnTicket", h.ReturnTicket),
	), h)
}

func active(b *bool) bool {
	return b == nil || *b
}

func (h *TicketHandler) CreateTicketType(ctx context.Context, req *CreateTicketTypeRequest) (*TicketTypeResponse, error) {
	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		return nil, rpc.ErrMissingTenant
	}

	view, err := h.uc.CreateTicketType(ctx, &dto.CreateTicketTypeInput{
		TenantID: tenantID,
		ActorID:  auth.GetActorID(ctx),
		EventID:  req.EventID,
		Name:     req.Name,
		Pricing:  req.Pricing,
		Capacity: req.Capacity,
		IsActive: active(req.IsActive),
	})
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &TicketTypeResponse{TicketTypeView: *view}, nil
}

func (h *TicketHandler) GetTicketType(ctx context.Context, req *TicketTypeRequest) (*TicketTypeResponse, error) {
	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		return nil, rpc.ErrMissingTenant
	}

	view, err := h.uc.GetTicketType(ctx, tenantID, req.ID)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &TicketTypeResponse{TicketTypeView: *view}, nil
}

func (h *TicketHandler) ListTicketTypes(ctx context.Context, req *ListTicketTypesRequest) (*ListTicketTypesResponse, error) {
	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		return nil, rpc.ErrMissingTenant
	}

	views, count, err := h.uc.ListTicketTypes(ctx, &dto.TicketTypeFilters{
		TenantID: tenantID,
		EventID:  req.EventID,
		IsActive: req.IsActive,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	if views == nil {
		views = []dto.TicketTypeView{}
	}
	return &ListTicketTypesResponse{TicketTypes: views, Total: count}, nil
}

func (h *TicketHandler) UpdateTicketType(ctx context.Context, req *UpdateTicketTypeRequest) (*TicketTypeResponse, error) {
	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		return nil, rpc.ErrMissingTenant
	}

	view, err := h.uc.UpdateTicketType(ctx, &dto.UpdateTicketTypeInput{
		ID:       req.ID,
		TenantID: tenantID,
		ActorID:  auth.GetActorID(ctx),
		Name:     req.Name,
		Pricing:  req.Pricing,
		IsActive: active(req.IsActive),
	})
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &TicketTypeResponse{TicketTypeView: *view}, nil
}

func (h *TicketHandler) DeleteTicketType(ctx context.Context, req *TicketTypeRequest) (*rpc.Empty, error) {
	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		return nil, rpc.ErrMissingTenant
	}

	if err := h.uc.DeleteTicketType(ctx, tenantID, req.ID, auth.GetActorID(ctx)); err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &rpc.Empty{}, nil
}

func (h *TicketHandler) SellTicket(ctx context.Context, req *TicketSaleRequest) (*TicketSaleResponse, error) {
	return h.sale(ctx, req, h.uc.SellTicket)
}

func (h *TicketHandler) ReturnTicket(ctx context.Context, req *TicketSaleRequest) (*TicketSaleResponse, error) {
	return h.sale(ctx, req, h.uc.ReturnTicket)
}

func (h *TicketHandler) sale(ctx context.Context, req *TicketSaleRequest, fn func(context.Context, *dto.TicketSaleInput) (*dto.TicketSale, error)) (*TicketSaleResponse, error) {
	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		return nil, rpc.ErrMissingTenant
	}

	out, err := fn(ctx, &dto.TicketSaleInput{
		TenantID:      tenantID,
		ActorID:       auth.GetActorID(ctx),
		TicketTypeID:  req.ID,
		Quantity:      req.Quantity,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
	})
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &TicketSaleResponse{TicketSale: *out}, nil
}

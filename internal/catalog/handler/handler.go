package handler

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/catalog"
	"github.com/fekuna/omnipos-catalog-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/clock"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/rpc"
	"github.com/fekuna/omnipos-catalog-service/internal/pricing"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const ServiceName = "omnipos.catalog.v1.CatalogService"

type EntryFields struct {
	CategoryID string              `json:"category_id,omitempty"`
	Name       string              `json:"name"`
	IsActive   *bool               `json:"is_active,omitempty"` // defaults to true
	TrackStock bool                `json:"track_stock"`
	Kind       model.EntryKind     `json:"kind"`
	Simple     *model.SimpleItem   `json:"simple,omitempty"`
	Variable   *model.VariableItem `json:"variable,omitempty"`
}

func (f EntryFields) active() bool {
	return f.IsActive == nil || *f.IsActive
}

type CreateEntryRequest struct {
	EntryFields
}

type UpdateEntryRequest struct {
	ID string `json:"id"`
	EntryFields
}

type EntryRequest struct {
	ID string `json:"id"`
}

type EntryResponse struct {
	dto.EntryView
}

type ListEntriesRequest struct {
	CategoryID string          `json:"category_id,omitempty"`
	Kind       model.EntryKind `json:"kind,omitempty"`
	IsActive   *bool           `json:"is_active,omitempty"`
	Query      string          `json:"query,omitempty"`
	SortBy     string          `json:"sort_by,omitempty"`
	SortOrder  string          `json:"sort_order,omitempty"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}

type ListEntriesResponse struct {
	Entries []dto.EntryView `json:"entries"`
	Total   int             `json:"total"`
}

// ResolvePriceRequest quotes either a stored entry (ID, VariantID) or an ad-hoc Pricing.
// At defaults to the server clock.
type ResolvePriceRequest struct {
	ID        string         `json:"id,omitempty"`
	VariantID string         `json:"variant_id,omitempty"`
	Pricing   *model.Pricing `json:"pricing,omitempty"`
	At        *time.Time     `json:"at,omitempty"`
}

type ResolvePriceResponse struct {
	Quote pricing.Quote `json:"quote"`
}

type CatalogHandler struct {
	uc     catalog.UseCase
	clock  clock.Clock
	logger logger.ZapLogger
}

func NewCatalogHandler(uc catalog.UseCase, clk clock.Clock, log logger.ZapLogger) *CatalogHandler {
	return &CatalogHandler{
		uc:     uc,
		clock:  clk,
		logger: log,
	}
}

func (h *CatalogHandler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(rpc.NewServiceDesc(ServiceName,
		rpc.Unary(ServiceName, "CreateEntry", h.CreateEntry),
		rpc.Unary(ServiceName, "GetEntry", h.GetEntry),
		rpc.Unary(ServiceName, "ListEntries", h.ListEntries),
		rpc.Unary(ServiceName, "UpdateEntry", h.UpdateEntry),
		rpc.Unary(ServiceName, "DeleteEntry", h.DeleteEntry),
		rpc.Unary(ServiceName, "ResolvePrice", h.ResolvePrice),
	), h)
}

func (h *CatalogHandler) CreateEntry(ctx context.Context, req *CreateEntryRequest) (*EntryResponse, error) {
	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		return nil, rpc.ErrMissingTenant
	}

	view, err := h.uc.CreateEntry(ctx, &dto.CreateEntryInput{
		TenantID:   tenantID,
		ActorID:    auth.GetActorID(ctx),
		CategoryID: req.CategoryID,
		Name:       req.Name,
		IsActive:   req.active(),
		TrackStock: req.TrackStock,
		Kind:       req.Kind,
		Simple:     req.Simple,
		Variable:   req.Variable,
	})
	if err != nil {
		h.logger.Debug("create entry rejected", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, rpc.ToStatus(err)
	}
	return &EntryResponse{EntryView: *view}, nil
}

func (h *CatalogHandler) GetEntry(ctx context.Context, req *EntryRequest) (*EntryResponse, error) {
	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		return nil, rpc.ErrMissingTenant
	}

	view, err := h.uc.GetEntry(ctx, tenantID, req.ID)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &EntryResponse{EntryView: *view}, nil
}

func (h *CatalogHandler) ListEntries(ctx context.Context, req *ListEntriesRequest) (*ListEntriesResponse, error) {
	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		return nil, rpc.ErrMissingTenant
	}

	views, count, err := h.uc.ListEntries(ctx, &dto.EntryFilters{
		TenantID:    tenantID,
		CategoryID:  req.CategoryID,
		Kind:        req.Kind,
		IsActive:    req.IsActive,
		SearchQuery: req.Query,
		SortBy:      req.SortBy,
		SortOrder:   req.SortOrder,
		Page:        req.Page,
		PageSize:    req.PageSize,
	})
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	if views == nil {
		views = []dto.EntryView{}
	}
	return &ListEntriesResponse{Entries: views, Total: count}, nil
}

func (h *CatalogHandler) UpdateEntry(ctx context.Context, req *UpdateEntryRequest) (*EntryResponse, error) {
	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		return nil, rpc.ErrMissingTenant
	}

	view, err := h.uc.UpdateEntry(ctx, &dto.UpdateEntryInput{
		ID:         req.ID,
		TenantID:   tenantID,
		ActorID:    auth.GetActorID(ctx),
		CategoryID: req.CategoryID,
		Name:       req.Name,
		IsActive:   req.active(),
		TrackStock: req.TrackStock,
		Kind:       req.Kind,
		Simple:     req.Simple,
		Variable:   req.Variable,
	})
	if err != nil {
		h.logger.Debug("update entry rejected", zap.String("entry_id", req.ID), zap.Error(err))
		return nil, rpc.ToStatus(err)
	}
	return &EntryResponse{EntryView: *view}, nil
}

func (h *CatalogHandler) DeleteEntry(ctx context.Context, req *EntryRequest) (*rpc.Empty, error) {
	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		return nil, rpc.ErrMissingTenant
	}

	if err := h.uc.DeleteEntry(ctx, tenantID, req.ID, auth.GetActorID(ctx)); err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &rpc.Empty{}, nil
}

func (h *CatalogHandler) ResolvePrice(ctx context.Context, req *ResolvePriceRequest) (*ResolvePriceResponse, error) {
	if req.Pricing != nil {
		at := h.clock.Now()
		if req.At != nil {
			at = *req.At
		}
		return &ResolvePriceResponse{Quote: req.Pricing.Resolve(at)}, nil
	}

	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		return nil, rpc.ErrMissingTenant
	}
	q, err := h.uc.ResolvePrice(ctx, tenantID, req.ID, req.VariantID)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &ResolvePriceResponse{Quote: *q}, nil
}

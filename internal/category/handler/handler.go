package handler

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/category/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/rpc"
	"google.golang.org/grpc"
)

const ServiceName = "omnipos.catalog.v1.CategoryService"

type CreateCategoryRequest struct {
	ParentID    *string `json:"parent_id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	SortOrder   int     `json:"sort_order"`
}

type UpdateCategoryRequest struct {
	ID          string  `json:"id"`
	ParentID    *string `json:"parent_id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	SortOrder   int     `json:"sort_order"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type CategoryRequest struct {
	ID string `json:"id"`
}

type CategoryResponse struct {
	Category *model.Category `json:"category"`
}

type ListCategoriesRequest struct {
	ParentID        *string `json:"parent_id,omitempty"` // "" lists root categories
	IsActive        *bool   `json:"is_active,omitempty"`
	IncludeChildren bool    `json:"include_children"`
	Page            int     `json:"page"`
	PageSize        int     `json:"page_size"`
}

type ListCategoriesResponse struct {
	Categories []model.Category `json:"categories"`
	Total      int              `json:"total"`
}

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CategoryHandler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(rpc.NewServiceDesc(ServiceName,
		rpc.Unary(ServiceName, "CreateCategory", h.CreateCategory),
		rpc.Unary(ServiceName, "GetCategory", h.GetCategory),
		rpc.Unary(ServiceName, "ListCategories", h.ListCategories),
		rpc.Unary(ServiceName, "UpdateCategory", h.UpdateCategory),
		rpc.Unary(ServiceName, "DeleteCategory", h.DeleteCategory),
	), h)
}

func (h *CategoryHandler) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*CategoryResponse, error) {
	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		return nil, rpc.ErrMissingTenant
	}

	cat, err := h.uc.CreateCategory(ctx, &dto.CreateCategoryInput{
		TenantID:    tenantID,
		ActorID:     auth.GetActorID(ctx),
		ParentID:    req.ParentID,
		Name:        req.Name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &CategoryResponse{Category: cat}, nil
}

func (h *CategoryHandler) GetCategory(ctx context.Context, req *CategoryRequest) (*CategoryResponse, error) {
	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		return nil, rpc.ErrMissingTenant
	}

	cat, err := h.uc.GetCategory(ctx, tenantID, req.ID)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &CategoryResponse{Category: cat}, nil
}

func (h *CategoryHandler) ListCategories(ctx context.Context, req *ListCategoriesRequest) (*ListCategoriesResponse, error) {
	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		return nil, rpc.ErrMissingTenant
	}

	cats, count, err := h.uc.ListCategories(ctx, &dto.CategoryFilters{
		TenantID:        tenantID,
		ParentID:        req.ParentID,
		IsActive:        req.IsActive,
		IncludeChildren: req.IncludeChildren,
		Page:            req.Page,
		PageSize:        req.PageSize,
	})
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	if cats == nil {
		cats = []model.Category{}
	}
	return &ListCategoriesResponse{Categories: cats, Total: count}, nil
}

func (h *CategoryHandler) UpdateCategory(ctx context.Context, req *UpdateCategoryRequest) (*CategoryResponse, error) {
	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		return nil, rpc.ErrMissingTenant
	}

	cat, err := h.uc.UpdateCategory(ctx, &dto.UpdateCategoryInput{
		ID:          req.ID,
		TenantID:    tenantID,
		ActorID:     auth.GetActorID(ctx),
		ParentID:    req.ParentID,
		Name:        req.Name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		IsActive:    req.IsActive == nil || *req.IsActive,
	})
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &CategoryResponse{Category: cat}, nil
}

func (h *CategoryHandler) DeleteCategory(ctx context.Context, req *CategoryRequest) (*rpc.Empty, error) {
	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		return nil, rpc.ErrMissingTenant
	}

	if err := h.uc.DeleteCategory(ctx, tenantID, req.ID, auth.GetActorID(ctx)); err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &rpc.Empty{}, nil
}

package usecase

import (
	"context"
	"strings"

	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/category/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/clock"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/metrics"
	"github.com/fekuna/omnipos-catalog-service/internal/storage/memory"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxDepth bounds the ancestor walk when checking a new parent.
const maxDepth = 32

type categoryUseCase struct {
	repo    category.Repository
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, clk clock.Clock, m *metrics.Metrics, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:    repo,
		clock:   clk,
		metrics: m,
		logger:  log,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	name, err := validName(input.Name)
	if err != nil {
		return nil, err
	}
	parentID := normalize(input.ParentID)
	if parentID != nil {
		if _, err := uc.parent(ctx, input.TenantID, *parentID); err != nil {
			return nil, err
		}
	}

	cat := &model.Category{
		BaseModel:   model.NewBaseModel(uuid.New().String(), input.ActorID, uc.clock.Now()),
		TenantID:    input.TenantID,
		ParentID:    parentID,
		Name:        name,
		Description: normalize(&input.Description),
		SortOrder:   input.SortOrder,
		IsActive:    true,
	}

	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, err
	}

	uc.metrics.RecordCatalogOperation("category_create")
	uc.logger.Info("category created",
		zap.String("tenant_id", cat.TenantID),
		zap.String("category_id", cat.ID),
	)
	return cat, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, tenantID, id string) (*model.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.NewNotFoundError("category", id)
	}
	return uc.repo.FindByID(ctx, tenantID, id)
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error) {
	if filters.TenantID == "" {
		return nil, 0, model.NewStructuralError("tenant_id", "cannot be empty", filters.TenantID)
	}
	if !filters.IncludeChildren {
		return uc.repo.FindAll(ctx, filters)
	}

	// The tree needs every category of the tenant; paging applies to the top level only.
	all, _, err := uc.repo.FindAll(ctx, &dto.CategoryFilters{TenantID: filters.TenantID, IsActive: filters.IsActive})
	if err != nil {
		return nil, 0, err
	}
	root := ""
	if filters.ParentID != nil {
		root = *filters.ParentID
	}
	tree := buildTree(all, root)
	return memory.Page(tree, filters.Page, filters.PageSize), len(tree), nil
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	if _, err := uuid.Parse(input.ID); err != nil {
		return nil, model.NewNotFoundError("category", input.ID)
	}
	cat, err := uc.repo.FindByID(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}

	name, err := validName(input.Name)
	if err != nil {
		return nil, err
	}
	parentID := normalize(input.ParentID)
	if parentID != nil {
		if err := uc.checkParent(ctx, input.TenantID, input.ID, *parentID); err != nil {
			return nil, err
		}
	}

	cat.Name = name
	cat.Description = normalize(&input.Description)
	cat.SortOrder = input.SortOrder
	cat.IsActive = input.IsActive
	cat.ParentID = parentID
	cat.Touch(input.ActorID, uc.clock.Now())

	if err := uc.repo.Update(ctx, cat); err != nil {
		return nil, err
	}

	uc.metrics.RecordCatalogOperation("category_update")
	uc.logger.Info("category updated",
		zap.String("tenant_id", cat.TenantID),
		zap.String("category_id", cat.ID),
	)
	return cat, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, tenantID, id, actorID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return model.NewNotFoundError("category", id)
	}
	if err := uc.repo.SoftDelete(ctx, tenantID, id, actorID, uc.clock.Now()); err != nil {
		return err
	}

	uc.metrics.RecordCatalogOperation("category_delete")
	uc.logger.Info("category deleted",
		zap.String("tenant_id", tenantID),
		zap.String("category_id", id),
	)
	return nil
}

// parent loads a prospective parent. A missing one is reported the way entry references are.
func (uc *categoryUseCase) parent(ctx context.Context, tenantID, parentID string) (*model.Category, error) {
	missing := model.NewMissingReferencesError([]model.ReferenceID{{Kind: model.ReferenceKindCategory, ID: parentID}})
	if _, err := uuid.Parse(parentID); err != nil {
		return nil, missing
	}
	p, err := uc.repo.FindByID(ctx, tenantID, parentID)
	if model.IsNotFoundError(err) {
		return nil, missing
	}
	return p, err
}

// checkParent rejects a parent that is the category itself or one of its descendants.
func (uc *categoryUseCase) checkParent(ctx context.Context, tenantID, id, parentID string) error {
	if parentID == id {
		return model.NewStructuralError("parent_id", "cannot be the category itself", parentID)
	}
	p, err := uc.parent(ctx, tenantID, parentID)
	if err != nil {
		return err
	}
	for depth := 0; p.ParentID != nil; depth++ {
		if *p.ParentID == id {
			return model.NewStructuralError("parent_id", "would create a cycle", parentID)
		}
		if depth == maxDepth {
			return model.NewStructuralError("parent_id", "hierarchy is too deep", parentID)
		}
		p, err = uc.repo.FindByID(ctx, tenantID, *p.ParentID)
		if model.IsNotFoundError(err) {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// buildTree nests categories under their parents, starting from those whose parent is root
// ("" for top-level categories). Input order is kept among siblings.
func buildTree(all []model.Category, root string) []model.Category {
	byParent := make(map[string][]model.Category)
	known := make(map[string]bool, len(all))
	for _, c := range all {
		known[c.ID] = true
	}
	for _, c := range all {
		key := ""
		// Children of a deleted or filtered-out parent surface at the top level.
		if c.ParentID != nil && known[*c.ParentID] {
			key = *c.ParentID
		}
		byParent[key] = append(byParent[key], c)
	}

	visited := make(map[string]bool, len(all))
	var attach func(parent string) []model.Category
	attach = func(parent string) []model.Category {
		var out []model.Category
		for _, c := range byParent[parent] {
			if visited[c.ID] {
				continue
			}
			visited[c.ID] = true
			c.Children = attach(c.ID)
			out = append(out, c)
		}
		return out
	}
	return attach(root)
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", model.NewStructuralError("name", "cannot be empty", name)
	}
	if len(name) > 255 {
		return "", model.NewStructuralError("name", "must be at most 255 characters", name)
	}
	return name, nil
}

func normalize(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

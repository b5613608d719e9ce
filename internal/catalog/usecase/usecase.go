package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/catalog"
	"github.com/fekuna/omnipos-catalog-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/clock"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/metrics"
	"github.com/fekuna/omnipos-catalog-service/internal/pricing"
	"github.com/fekuna/omnipos-catalog-service/internal/reference"
	"github.com/fekuna/omnipos-catalog-service/internal/uniqueness"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxPageSize  = 100
	indexTimeout = 5 * time.Second
)

type catalogUseCase struct {
	repo    catalog.Repository
	cache   catalog.Cache
	index   catalog.Index
	unique  *uniqueness.Validator
	refs    *reference.Validator
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  logger.ZapLogger
}

type Option func(*catalogUseCase)

func WithCache(c catalog.Cache) Option {
	return func(uc *catalogUseCase) { uc.cache = c }
}

func WithIndex(x catalog.Index) Option {
	return func(uc *catalogUseCase) { uc.index = x }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(uc *catalogUseCase) { uc.metrics = m }
}

func NewCatalogUseCase(
	repo catalog.Repository,
	refs *reference.Validator,
	clk clock.Clock,
	log logger.ZapLogger,
	opts ...Option,
) catalog.UseCase {
	uc := &catalogUseCase{
		repo:   repo,
		unique: uniqueness.NewValidator(repo),
		refs:   refs,
		clock:  clk,
		logger: log,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *catalogUseCase) CreateEntry(ctx context.Context, input *dto.CreateEntryInput) (*dto.EntryView, error) {
	item, err := model.NewItem(input.Kind, input.Simple, input.Variable)
	if err != nil {
		return nil, err
	}
	switch it := item.(type) {
	case *model.SimpleItem:
		it.SoldQuantity = 0
	case *model.VariableItem:
		for i := range it.Variants {
			it.Variants[i].ID = uuid.New().String()
			it.Variants[i].SoldQuantity = 0
		}
	}

	e := &model.CatalogEntry{
		BaseModel:  model.NewBaseModel(uuid.New().String(), input.ActorID, uc.clock.Now()),
		TenantID:   input.TenantID,
		CategoryID: input.CategoryID,
		Name:       strings.TrimSpace(input.Name),
		IsActive:   input.IsActive,
		TrackStock: input.TrackStock,
		Item:       item,
	}
	if err := model.ValidateEntry(e); err != nil {
		return nil, err
	}
	if err := uc.checkUnique(ctx, e); err != nil {
		return nil, err
	}
	if err := uc.checkCategory(ctx, e.TenantID, e.CategoryID); err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, e); err != nil {
		return nil, err
	}

	uc.metrics.RecordCatalogOperation("create")
	uc.logger.Info("catalog entry created",
		zap.String("tenant_id", e.TenantID),
		zap.String("entry_id", e.ID),
		zap.String("kind", string(e.Kind())),
	)
	uc.afterWrite(ctx, e)
	return uc.view(e), nil
}

func (uc *catalogUseCase) GetEntry(ctx context.Context, tenantID, id string) (*dto.EntryView, error) {
	e, err := uc.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return uc.view(e), nil
}

func (uc *catalogUseCase) load(ctx context.Context, tenantID, id string) (*model.CatalogEntry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.NewNotFoundError("catalog_entry", id)
	}
	if uc.cache != nil {
		if e, ok := uc.cache.GetEntry(ctx, tenantID, id); ok {
			return e, nil
		}
	}

	e, err := uc.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if uc.cache != nil {
		uc.cache.SetEntry(ctx, e)
	}
	return e, nil
}

func (uc *catalogUseCase) ListEntries(ctx context.Context, filters *dto.EntryFilters) ([]dto.EntryView, int, error) {
	if filters.TenantID == "" {
		return nil, 0, model.NewStructuralError("tenant_id", "cannot be empty", filters.TenantID)
	}
	if filters.PageSize > maxPageSize {
		filters.PageSize = maxPageSize
	}

	// 1. Cache
	if uc.cache != nil {
		if entries, count, ok := uc.cache.GetList(ctx, filters); ok {
			return uc.views(entries), count, nil
		}
	}

	entries, count, err := uc.find(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	if uc.cache != nil {
		uc.cache.SetList(ctx, filters, entries, count)
	}
	return uc.views(entries), count, nil
}

func (uc *catalogUseCase) find(ctx context.Context, filters *dto.EntryFilters) ([]model.CatalogEntry, int, error) {
	// 2. Search index when there is free text; the database stays the source of truth
	// for the returned entries.
	if filters.SearchQuery != "" && uc.index != nil {
		ids, total, err := uc.index.Search(ctx, filters)
		if err == nil {
			entries, err := uc.repo.FindByIDs(ctx, filters.TenantID, ids)
			if err != nil {
				return nil, 0, err
			}
			return inOrder(entries, ids), total, nil
		}
		uc.logger.Error("search index failed, falling back to DB", zap.Error(err))
	}

	// 3. DB
	return uc.repo.FindAll(ctx, filters)
}

func inOrder(entries []model.CatalogEntry, ids []string) []model.CatalogEntry {
	byID := make(map[string]model.CatalogEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	out := make([]model.CatalogEntry, 0, len(entries))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

func (uc *catalogUseCase) UpdateEntry(ctx context.Context, input *dto.UpdateEntryInput) (*dto.EntryView, error) {
	if _, err := uuid.Parse(input.ID); err != nil {
		return nil, model.NewNotFoundError("catalog_entry", input.ID)
	}
	existing, err := uc.repo.FindByID(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}
	if input.Kind != existing.Kind() {
		return nil, model.NewStructuralError("kind", "is immutable", input.Kind)
	}

	item, err := model.NewItem(input.Kind, input.Simple, input.Variable)
	if err != nil {
		return nil, err
	}
	if err := keepCounters(existing, item); err != nil {
		return nil, err
	}

	updated := &model.CatalogEntry{
		BaseModel:  existing.BaseModel,
		TenantID:   existing.TenantID,
		CategoryID: input.CategoryID,
		Name:       strings.TrimSpace(input.Name),
		IsActive:   input.IsActive,
		TrackStock: input.TrackStock,
		Item:       item,
	}
	updated.Touch(input.ActorID, uc.clock.Now())

	if err := model.ValidateEntryUpdate(existing, updated); err != nil {
		return nil, err
	}
	if err := uc.checkUnique(ctx, updated); err != nil {
		return nil, err
	}
	if updated.CategoryID != existing.CategoryID {
		if err := uc.checkCategory(ctx, updated.TenantID, updated.CategoryID); err != nil {
			return nil, err
		}
	}

	if err := uc.repo.Update(ctx, updated); err != nil {
		return nil, err
	}

	uc.metrics.RecordCatalogOperation("update")
	uc.logger.Info("catalog entry updated",
		zap.String("tenant_id", updated.TenantID),
		zap.String("entry_id", updated.ID),
	)
	uc.afterWrite(ctx, updated)
	return uc.view(updated), nil
}

// keepCounters copies the stored counters onto the units of item that already exist.
// Variants without an id are new and keep their initial stock.
func keepCounters(existing *model.CatalogEntry, item model.Item) error {
	switch it := item.(type) {
	case *model.SimpleItem:
		cur, _ := existing.Simple()
		it.Stock = cur.Stock
	case *model.VariableItem:
		cur, _ := existing.Variable()
		seen := make(map[string]struct{}, len(it.Variants))
		for i := range it.Variants {
			v := &it.Variants[i]
			if v.ID == "" {
				v.ID = uuid.New().String()
				v.SoldQuantity = 0
				continue
			}
			if _, dup := seen[v.ID]; dup {
				return model.NewStructuralError("variants.id", "duplicate variant id", v.ID)
			}
			seen[v.ID] = struct{}{}
			old, ok := cur.FindVariant(v.ID)
			if !ok {
				return model.NewNotFoundError("variant", v.ID)
			}
			v.Stock = old.Stock
		}
	}
	return nil
}

func (uc *catalogUseCase) DeleteEntry(ctx context.Context, tenantID, id, actorID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return model.NewNotFoundError("catalog_entry", id)
	}
	if err := uc.repo.SoftDelete(ctx, tenantID, id, actorID, uc.clock.Now()); err != nil {
		return err
	}

	uc.metrics.RecordCatalogOperation("delete")
	uc.logger.Info("catalog entry deleted", zap.String("tenant_id", tenantID), zap.String("entry_id", id))

	uc.invalidate(ctx, tenantID, id)
	if uc.index != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
			defer cancel()
			if err := uc.index.RemoveEntry(ctx, id); err != nil {
				uc.logger.Error("failed to remove entry from search index", zap.String("entry_id", id), zap.Error(err))
			}
		}()
	}
	return nil
}

func (uc *catalogUseCase) ResolvePrice(ctx context.Context, tenantID, entryID, variantID string) (*pricing.Quote, error) {
	e, err := uc.load(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	switch it := e.Item.(type) {
	case *model.SimpleItem:
		if variantID != "" {
			return nil, model.NewNotFoundError("variant", variantID)
		}
		q := it.Resolve(now)
		return &q, nil
	case *model.VariableItem:
		if variantID == "" {
			return nil, model.NewStructuralError("variant_id", "required for VARIABLE entries", entryID)
		}
		v, ok := it.FindVariant(variantID)
		if !ok {
			return nil, model.NewNotFoundError("variant", variantID)
		}
		q := v.Resolve(now)
		return &q, nil
	}
	return nil, model.NewNotFoundError("catalog_entry", entryID)
}

func (uc *catalogUseCase) checkUnique(ctx context.Context, e *model.CatalogEntry) error {
	if err := uc.unique.CheckNameUnique(ctx, e.TenantID, e.Name, e.ID); err != nil {
		return err
	}
	if s, ok := e.Simple(); ok {
		return uc.unique.CheckSKUUnique(ctx, e.TenantID, s.SKU, e.ID)
	}
	return nil
}

func (uc *catalogUseCase) checkCategory(ctx context.Context, tenantID, categoryID string) error {
	if categoryID == "" || uc.refs == nil {
		return nil
	}
	return uc.refs.CheckAllExist(ctx, tenantID, []model.ReferenceID{
		{Kind: model.ReferenceKindCategory, ID: categoryID},
	})
}

func (uc *catalogUseCase) afterWrite(ctx context.Context, e *model.CatalogEntry) {
	uc.invalidate(ctx, e.TenantID, e.ID)
	if uc.index == nil {
		return
	}
	snapshot := e.Clone()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
		defer cancel()
		if err := uc.index.IndexEntry(ctx, snapshot); err != nil {
			uc.logger.Error("failed to index catalog entry", zap.String("entry_id", snapshot.ID), zap.Error(err))
		}
	}()
}

func (uc *catalogUseCase) invalidate(ctx context.Context, tenantID, id string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.InvalidateEntry(ctx, tenantID, id); err != nil {
		uc.logger.Warn("failed to invalidate entry cache", zap.String("entry_id", id), zap.Error(err))
	}
}

func (uc *catalogUseCase) view(e *model.CatalogEntry) *dto.EntryView {
	now := uc.clock.Now()
	v := &dto.EntryView{Entry: e}
	switch it := e.Item.(type) {
	case *model.SimpleItem:
		q := it.Resolve(now)
		v.Price = &q
	case *model.VariableItem:
		v.VariantPrices = make(map[string]pricing.Quote, len(it.Variants))
		for _, vr := range it.Variants {
			v.VariantPrices[vr.ID] = vr.Resolve(now)
		}
	}
	return v
}

func (uc *catalogUseCase) views(entries []model.CatalogEntry) []dto.EntryView {
	out := make([]dto.EntryView, len(entries))
	for i := range entries {
		out[i] = *uc.view(&entries[i])
	}
	return out
}

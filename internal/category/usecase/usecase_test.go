package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/category/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/category/repository"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/clock"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/metrics"
	"github.com/fekuna/omnipos-catalog-service/internal/storage/memory"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newUseCase(t *testing.T) (category.UseCase, *metrics.Metrics, *clock.Fixed) {
	t.Helper()
	m := metrics.New("test", prometheus.NewRegistry())
	clk := clock.NewFixed(time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC))
	repo := repository.NewMemoryRepository(memory.NewStore())
	return NewCategoryUseCase(repo, clk, m, logger.NewNopLogger()), m, clk
}

func create(t *testing.T, uc category.UseCase, name string, parent *string) *model.Category {
	t.Helper()
	c, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{
		TenantID: "t1",
		ActorID:  "u1",
		ParentID: parent,
		Name:     name,
	})
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return c
}

func TestCreateCategory(t *testing.T) {
	uc, m, clk := newUseCase(t)

	c, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{
		TenantID:    "t1",
		ActorID:     "u1",
		Name:        "  Drinks ",
		Description: " ",
		SortOrder:   3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name != "Drinks" || c.Description != nil || !c.IsActive || !c.CreatedAt.Equal(clk.Now()) || *c.CreatedBy != "u1" {
		t.Errorf("unexpected category %+v", c)
	}
	if got := testutil.ToFloat64(m.CatalogOperations.WithLabelValues("category_create")); got != 1 {
		t.Errorf("expected one create recorded, got %v", got)
	}
}

func TestCreateCategoryRejections(t *testing.T) {
	uc, _, _ := newUseCase(t)
	missing := uuid.NewString()
	malformed := "nope"

	tests := []struct {
		name  string
		input *dto.CreateCategoryInput
		check func(error) bool
	}{
		{"empty name", &dto.CreateCategoryInput{TenantID: "t1", Name: "  "}, model.IsStructuralError},
		{"missing parent", &dto.CreateCategoryInput{TenantID: "t1", Name: "A", ParentID: &missing}, model.IsMissingReferencesError},
		{"malformed parent", &dto.CreateCategoryInput{TenantID: "t1", Name: "A", ParentID: &malformed}, model.IsMissingReferencesError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := uc.CreateCategory(context.Background(), tt.input); !tt.check(err) {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestParentFromAnotherTenantIsMissing(t *testing.T) {
	uc, _, _ := newUseCase(t)
	root := create(t, uc, "Drinks", nil)

	_, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{TenantID: "t2", Name: "Tea", ParentID: &root.ID})
	if !model.IsMissingReferencesError(err) {
		t.Fatalf("expected MissingReferencesError, got %v", err)
	}
}

func TestUpdateCategoryRejectsCycles(t *testing.T) {
	uc, _, _ := newUseCase(t)
	a := create(t, uc, "A", nil)
	b := create(t, uc, "B", &a.ID)
	c := create(t, uc, "C", &b.ID)

	update := func(id string, parent *string) error {
		_, err := uc.UpdateCategory(context.Background(), &dto.UpdateCategoryInput{
			ID: id, TenantID: "t1", Name: "X", ParentID: parent, IsActive: true,
		})
		return err
	}

	if err := update(a.ID, &a.ID); !model.IsStructuralError(err) {
		t.Errorf("self parent: expected StructuralError, got %v", err)
	}
	if err := update(a.ID, &c.ID); !model.IsStructuralError(err) {
		t.Errorf("descendant parent: expected StructuralError, got %v", err)
	}
	if err := update(c.ID, &a.ID); err != nil {
		t.Errorf("moving up the tree should succeed: %v", err)
	}
	if err := update(b.ID, nil); err != nil {
		t.Errorf("moving to root should succeed: %v", err)
	}
	if err := update(uuid.NewString(), nil); !model.IsNotFoundError(err) {
		t.Errorf("unknown id: expected NotFoundError, got %v", err)
	}
}

func TestUpdateCategoryTouchesAudit(t *testing.T) {
	uc, _, clk := newUseCase(t)
	c := create(t, uc, "Drinks", nil)
	clk.Advance(time.Hour)

	got, err := uc.UpdateCategory(context.Background(), &dto.UpdateCategoryInput{
		ID: c.ID, TenantID: "t1", ActorID: "u2", Name: "Beverages", SortOrder: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Beverages" || got.IsActive || got.SortOrder != 5 || !got.UpdatedAt.Equal(clk.Now()) || *got.UpdatedBy != "u2" {
		t.Errorf("unexpected category %+v", got)
	}
	stored, _ := uc.GetCategory(context.Background(), "t1", c.ID)
	if !stored.CreatedAt.Equal(c.CreatedAt) || *stored.CreatedBy != "u1" {
		t.Errorf("creation audit changed: %+v", stored)
	}
}

func TestListCategoriesTree(t *testing.T) {
	uc, _, _ := newUseCase(t)
	drinks := create(t, uc, "Drinks", nil)
	create(t, uc, "Food", nil)
	coffee := create(t, uc, "Coffee", &drinks.ID)
	create(t, uc, "Espresso", &coffee.ID)

	flat, total, err := uc.ListCategories(context.Background(), &dto.CategoryFilters{TenantID: "t1"})
	if err != nil || total != 4 || len(flat) != 4 {
		t.Fatalf("unexpected flat listing %d %v", total, err)
	}

	tree, total, err := uc.ListCategories(context.Background(), &dto.CategoryFilters{TenantID: "t1", IncludeChildren: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || tree[0].Name != "Drinks" || tree[1].Name != "Food" {
		t.Fatalf("unexpected roots %+v", tree)
	}
	if len(tree[0].Children) != 1 || tree[0].Children[0].Name != "Coffee" ||
		len(tree[0].Children[0].Children) != 1 || tree[0].Children[0].Children[0].Name != "Espresso" {
		t.Errorf("unexpected subtree %+v", tree[0].Children)
	}

	sub, total, _ := uc.ListCategories(context.Background(), &dto.CategoryFilters{TenantID: "t1", ParentID: &drinks.ID, IncludeChildren: true})
	if total != 1 || sub[0].ID != coffee.ID || len(sub[0].Children) != 1 {
		t.Errorf("unexpected subtree from drinks %+v", sub)
	}

	if _, _, err := uc.ListCategories(context.Background(), &dto.CategoryFilters{}); !model.IsStructuralError(err) {
		t.Errorf("expected StructuralError without tenant, got %v", err)
	}
}

func TestDeleteCategoryPromotesChildren(t *testing.T) {
	uc, _, _ := newUseCase(t)
	drinks := create(t, uc, "Drinks", nil)
	coffee := create(t, uc, "Coffee", &drinks.ID)

	if err := uc.DeleteCategory(context.Background(), "t1", drinks.ID, "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.GetCategory(context.Background(), "t1", drinks.ID); !model.IsNotFoundError(err) {
		t.Errorf("expected NotFoundError after delete, got %v", err)
	}
	got, _ := uc.GetCategory(context.Background(), "t1", coffee.ID)
	if got.ParentID != nil {
		t.Errorf("expected coffee at root, got parent %v", *got.ParentID)
	}
	if err := uc.DeleteCategory(context.Background(), "t1", "bad-id", "u1"); !model.IsNotFoundError(err) {
		t.Errorf("expected NotFoundError for malformed id, got %v", err)
	}
}

func TestBuildTreeSurfacesOrphans(t *testing.T) {
	gone := "deleted-parent"
	tree := buildTree([]model.Category{
		{BaseModel: model.BaseModel{ID: "a"}, Name: "A"},
		{BaseModel: model.BaseModel{ID: "b"}, Name: "B", ParentID: &gone},
	}, "")
	if len(tree) != 2 {
		t.Errorf("expected orphan at top level, got %+v", tree)
	}
}

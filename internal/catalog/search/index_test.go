package search

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

func TestBuildQueryScopesToTenant(t *testing.T) {
	active := true
	q := buildQuery(&dto.EntryFilters{
		TenantID:    "t1",
		CategoryID:  "c1",
		IsActive:    &active,
		SearchQuery: "t-shirt (red)",
		Page:        2,
		PageSize:    20,
	})

	body, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(body)
	for _, want := range []string{
		`{"term":{"tenant_id":"t1"}}`,
		`{"term":{"category_id":"c1"}}`,
		`{"term":{"is_active":true}}`,
		`"query":"*t\\-shirt \\(red\\)*"`,
		`"from":20`,
		`"size":20`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("query missing %s\n%s", want, s)
		}
	}
}

func TestToDocumentCollectsVariantSKUs(t *testing.T) {
	e := &model.CatalogEntry{
		BaseModel: model.BaseModel{ID: "e1", CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		TenantID:  "t1",
		Name:      "Shirt",
		Item: &model.VariableItem{Variants: []model.Variant{
			{SKU: "S-RED", Attributes: []model.Attribute{{Name: "color", Value: "red"}}},
			{SKU: "S-BLUE", Attributes: []model.Attribute{{Name: "color", Value: "blue"}}},
		}},
	}

	doc := toDocument(e)
	if doc.Kind != model.EntryKindVariable || len(doc.SKUs) != 2 || doc.Attributes[1] != "blue" {
		t.Errorf("unexpected document %+v", doc)
	}
	if doc.CreatedAt != "2026-01-02T03:04:05Z" {
		t.Errorf("unexpected created_at %s", doc.CreatedAt)
	}
}

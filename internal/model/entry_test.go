package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCatalogEntryJSONKeepsKind(t *testing.T) {
	e := variableEntry(variant("v1", "RED-M"))
	e.CreatedAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got CatalogEntry
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	v, ok := got.Variable()
	if !ok {
		t.Fatalf("expected VARIABLE payload, got %s", got.Kind())
	}
	if len(v.Variants) != 1 || v.Variants[0].SKU != "RED-M" {
		t.Fatalf("variants not decoded: %+v", v.Variants)
	}
	if !v.Variants[0].BasePrice.Equal(money("30")) {
		t.Errorf("expected base price 30, got %s", v.Variants[0].BasePrice)
	}
}

func TestCatalogEntryJSONRejectsUnknownKind(t *testing.T) {
	var got CatalogEntry
	err := json.Unmarshal([]byte(`{"id":"x","kind":"BUNDLE"}`), &got)
	if !IsStructuralError(err) {
		t.Fatalf("expected StructuralError, got %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	e := variableEntry(variant("v1", "RED-M"))
	c := e.Clone()

	cv, _ := c.Variable()
	cv.Variants[0].StockQuantity = 99
	cv.Variants[0].Attributes[0].Value = "green"

	ov, _ := e.Variable()
	if ov.Variants[0].StockQuantity != 5 {
		t.Errorf("clone shares variant stock")
	}
	if ov.Variants[0].Attributes[0].Value != "red" {
		t.Errorf("clone shares attributes")
	}
}

func TestPricingResolve(t *testing.T) {
	now := time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)
	p := Pricing{BasePrice: money("100"), SalePrice: moneyPtr("80"), SaleStart: &before, SaleEnd: &after}

	q := p.Resolve(now)
	if !q.IsOnSale || !q.EffectivePrice.Equal(money("80")) {
		t.Fatalf("expected sale price 80, got %+v", q)
	}
	if q := p.Resolve(after.Add(time.Second)); q.IsOnSale {
		t.Fatalf("expected sale to be over")
	}
}

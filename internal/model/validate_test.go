package model

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func money(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func moneyPtr(v string) *decimal.Decimal {
	d := money(v)
	return &d
}

func simpleEntry() *CatalogEntry {
	return &CatalogEntry{
		BaseModel: BaseModel{ID: "e1"},
		TenantID:  "t1",
		Name:      "Festival Tee",
		IsActive:  true,
		Item: &SimpleItem{
			SKU:     "TEE-1",
			Pricing: Pricing{BasePrice: money("100"), Cost: money("40")},
			Stock:   Stock{StockQuantity: 10},
		},
	}
}

func variant(id, sku string) Variant {
	return Variant{
		ID:         id,
		SKU:        sku,
		Attributes: []Attribute{{Name: "color", Value: "red"}, {Name: "size", Value: "M"}},
		Pricing:    Pricing{BasePrice: money("30"), Cost: money("10")},
		Stock:      Stock{StockQuantity: 5},
	}
}

func variableEntry(variants ...Variant) *CatalogEntry {
	return &CatalogEntry{
		BaseModel: BaseModel{ID: "e2"},
		TenantID:  "t1",
		Name:      "Hoodie",
		Item: &VariableItem{
			Options:  []OptionAxis{{Name: "color", Values: []string{"red", "blue"}}},
			Variants: variants,
		},
	}
}

func TestValidateEntry(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	tests := []struct {
		name     string
		entry    func() *CatalogEntry
		errField string
	}{
		{
			name:  "valid simple",
			entry: simpleEntry,
		},
		{
			name:  "valid variable",
			entry: func() *CatalogEntry { return variableEntry(variant("v1", "RED-M"), variant("v2", "BLUE-M")) },
		},
		{
			name: "empty name",
			entry: func() *CatalogEntry {
				e := simpleEntry()
				e.Name = "  "
				return e
			},
			errField: "name",
		},
		{
			name: "missing payload",
			entry: func() *CatalogEntry {
				e := simpleEntry()
				e.Item = nil
				return e
			},
			errField: "kind",
		},
		{
			name: "simple without sku",
			entry: func() *CatalogEntry {
				e := simpleEntry()
				e.Item.(*SimpleItem).SKU = ""
				return e
			},
			errField: "sku",
		},
		{
			name: "negative base price",
			entry: func() *CatalogEntry {
				e := simpleEntry()
				e.Item.(*SimpleItem).BasePrice = money("-1")
				return e
			},
			errField: "base_price",
		},
		{
			name: "negative stock",
			entry: func() *CatalogEntry {
				e := simpleEntry()
				e.Item.(*SimpleItem).StockQuantity = -1
				return e
			},
			errField: "stock_quantity",
		},
		{
			name: "sale price equal to base",
			entry: func() *CatalogEntry {
				e := simpleEntry()
				e.Item.(*SimpleItem).SalePrice = moneyPtr("100")
				return e
			},
			errField: "sale_price",
		},
		{
			name: "sale window reversed",
			entry: func() *CatalogEntry {
				e := simpleEntry()
				s := e.Item.(*SimpleItem)
				s.SalePrice = moneyPtr("80")
				s.SaleStart = &start
				s.SaleEnd = &end
				return e
			},
			errField: "sale_end",
		},
		{
			name:     "variable without variants",
			entry:    func() *CatalogEntry { return variableEntry() },
			errField: "variants",
		},
		{
			name: "variant without attributes",
			entry: func() *CatalogEntry {
				v := variant("v1", "RED-M")
				v.Attributes = nil
				return variableEntry(v)
			},
			errField: "variants.attributes",
		},
		{
			name: "variant sale not below base",
			entry: func() *CatalogEntry {
				v := variant("v1", "RED-M")
				v.SalePrice = moneyPtr("31")
				return variableEntry(v)
			},
			errField: "variants.sale_price",
		},
		{
			name: "variant empty sku",
			entry: func() *CatalogEntry {
				return variableEntry(variant("v1", " "))
			},
			errField: "variants.sku",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntry(tt.entry())
			if tt.errField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var se *StructuralError
			if !errors.As(err, &se) {
				t.Fatalf("expected StructuralError, got %v", err)
			}
			if se.Field != tt.errField {
				t.Fatalf("expected field %q, got %q", tt.errField, se.Field)
			}
		})
	}
}

func TestValidateEntryDuplicateVariantSKU(t *testing.T) {
	e := variableEntry(variant("v1", "RED-M"), variant("v2", "red-m"))

	err := ValidateEntry(e)
	var se *StructuralError
	if !errors.As(err, &se) {
		t.Fatalf("expected StructuralError, got %v", err)
	}
	if se.Reason != "duplicate sku" {
		t.Errorf("expected duplicate sku reason, got %q", se.Reason)
	}
	if se.Value != "red-m" {
		t.Errorf("expected offending sku red-m, got %v", se.Value)
	}
}

func TestValidateEntryUpdateKindIsImmutable(t *testing.T) {
	existing := simpleEntry()
	updated := variableEntry(variant("v1", "RED-M"))
	updated.ID = existing.ID

	err := ValidateEntryUpdate(existing, updated)
	var se *StructuralError
	if !errors.As(err, &se) || se.Field != "kind" {
		t.Fatalf("expected kind StructuralError, got %v", err)
	}

	// A kind change is rejected even when the new payload would be invalid too.
	broken := variableEntry()
	if err := ValidateEntryUpdate(existing, broken); !IsStructuralError(err) || err.(*StructuralError).Field != "kind" {
		t.Fatalf("expected kind StructuralError first, got %v", err)
	}

	same := simpleEntry()
	same.Name = "Renamed Tee"
	if err := ValidateEntryUpdate(existing, same); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewItem(t *testing.T) {
	simple := &SimpleItem{SKU: "A"}
	variable := &VariableItem{}

	t.Run("simple with variable payload", func(t *testing.T) {
		_, err := NewItem(EntryKindSimple, simple, variable)
		if !IsStructuralError(err) {
			t.Fatalf("expected StructuralError, got %v", err)
		}
	})

	t.Run("variable with simple payload", func(t *testing.T) {
		_, err := NewItem(EntryKindVariable, simple, variable)
		if !IsStructuralError(err) {
			t.Fatalf("expected StructuralError, got %v", err)
		}
	})

	t.Run("missing payload", func(t *testing.T) {
		_, err := NewItem(EntryKindVariable, nil, nil)
		if !IsStructuralError(err) {
			t.Fatalf("expected StructuralError, got %v", err)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := NewItem("BUNDLE", nil, nil)
		if !IsStructuralError(err) {
			t.Fatalf("expected StructuralError, got %v", err)
		}
	})

	t.Run("simple", func(t *testing.T) {
		it, err := NewItem(EntryKindSimple, simple, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if it.Kind() != EntryKindSimple {
			t.Fatalf("expected SIMPLE, got %s", it.Kind())
		}
	})
}

func TestValidateTicketType(t *testing.T) {
	valid := TicketType{
		TenantID: "t1",
		EventID:  "ev1",
		Name:     "GA",
		Pricing:  Pricing{BasePrice: money("50")},
		Capacity: 100,
	}
	if err := ValidateTicketType(&valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	oversold := valid
	oversold.QuantitySold = 101
	if err := ValidateTicketType(&oversold); !IsStructuralError(err) {
		t.Fatalf("expected StructuralError, got %v", err)
	}

	noEvent := valid
	noEvent.EventID = ""
	if err := ValidateTicketType(&noEvent); !IsStructuralError(err) {
		t.Fatalf("expected StructuralError, got %v", err)
	}
}

func TestValidatePricingScale(t *testing.T) {
	tests := []struct {
		name      string
		pricing   Pricing
		wantField string
	}{
		{"two decimals", Pricing{BasePrice: money("10.99"), Cost: money("4.50"), SalePrice: moneyPtr("9.95")}, ""},
		{"trailing zeros", Pricing{BasePrice: money("10.0000"), Cost: money("4.500")}, ""},
		{"base price too precise", Pricing{BasePrice: money("10.004"), SalePrice: moneyPtr("10.001")}, "base_price"},
		{"cost too precise", Pricing{BasePrice: money("10"), Cost: money("0.005")}, "cost"},
		{"sale price too precise", Pricing{BasePrice: money("10.01"), SalePrice: moneyPtr("10.005")}, "sale_price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePricing("", tt.pricing)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var se *StructuralError
			if !errors.As(err, &se) || se.Field != tt.wantField {
				t.Fatalf("expected StructuralError on %s, got %v", tt.wantField, err)
			}
		})
	}
}

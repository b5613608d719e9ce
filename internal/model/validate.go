package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places stored for every price column.
const MoneyScale = 2

// ValidateEntry checks the structural rules of a catalog entry. Uniqueness against other
// entries is not checked here.
func ValidateEntry(e *CatalogEntry) error {
	if e.TenantID == "" {
		return NewStructuralError("tenant_id", "cannot be empty", e.TenantID)
	}
	if strings.TrimSpace(e.Name) == "" {
		return NewStructuralError("name", "cannot be empty", e.Name)
	}

	switch it := e.Item.(type) {
	case *SimpleItem:
		return validateSimple(it)
	case *VariableItem:
		return validateVariable(it)
	default:
		return NewStructuralError("kind", "must be SIMPLE or VARIABLE", e.Kind())
	}
}

// ValidateEntryUpdate rejects a kind change before looking at anything else.
func ValidateEntryUpdate(existing, updated *CatalogEntry) error {
	if existing.Kind() != updated.Kind() {
		return NewStructuralError("kind", "is immutable", updated.Kind())
	}
	return ValidateEntry(updated)
}

// ValidatePricing applies the money rules shared by simple entries, variants and ticket types.
// field prefixes the reported field name.
func ValidatePricing(field string, p Pricing) error {
	if p.BasePrice.IsNegative() {
		return NewStructuralError(field+"base_price", "must be non-negative", p.BasePrice)
	}
	if p.Cost.IsNegative() {
		return NewStructuralError(field+"cost", "must be non-negative", p.Cost)
	}
	if !withinScale(p.BasePrice) {
		return NewStructuralError(field+"base_price", "must have at most 2 decimal places", p.BasePrice)
	}
	if !withinScale(p.Cost) {
		return NewStructuralError(field+"cost", "must have at most 2 decimal places", p.Cost)
	}
	return ValidateSale(field, p)
}

// ValidateSale enforces sale price < base price and an ordered window.
func ValidateSale(field string, p Pricing) error {
	if p.SalePrice != nil {
		if p.SalePrice.IsNegative() {
			return NewStructuralError(field+"sale_price", "must be non-negative", *p.SalePrice)
		}
		if !withinScale(*p.SalePrice) {
			return NewStructuralError(field+"sale_price", "must have at most 2 decimal places", *p.SalePrice)
		}
		if !p.SalePrice.LessThan(p.BasePrice) {
			return NewStructuralError(field+"sale_price", "must be less than base price", *p.SalePrice)
		}
	}
	if p.SaleStart != nil && p.SaleEnd != nil && p.SaleEnd.Before(*p.SaleStart) {
		return NewStructuralError(field+"sale_end", "must not be before sale start", *p.SaleEnd)
	}
	return nil
}

// withinScale accepts trailing zeros past the scale, so 10.000 is fine and 10.004 is not.
func withinScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale))
}

func validateStock(field string, s Stock) error {
	if s.StockQuantity < 0 {
		return NewStructuralError(field+"stock_quantity", "must be non-negative", s.StockQuantity)
	}
	if s.SoldQuantity < 0 {
		return NewStructuralError(field+"sold_quantity", "must be non-negative", s.SoldQuantity)
	}
	return nil
}

func validateSimple(s *SimpleItem) error {
	if strings.TrimSpace(s.SKU) == "" {
		return NewStructuralError("sku", "cannot be empty", s.SKU)
	}
	if err := ValidatePricing("", s.Pricing); err != nil {
		return err
	}
	return validateStock("", s.Stock)
}

func validateVariable(v *VariableItem) error {
	for _, o := range v.Options {
		if strings.TrimSpace(o.Name) == "" {
			return NewStructuralError("options.name", "cannot be empty", o.Name)
		}
	}
	if len(v.Variants) == 0 {
		return NewStructuralError("variants", "at least one variant is required", 0)
	}

	seen := make(map[string]struct{}, len(v.Variants))
	for _, vr := range v.Variants {
		sku := strings.TrimSpace(vr.SKU)
		if sku == "" {
			return NewStructuralError("variants.sku", "cannot be empty", vr.SKU)
		}
		key := strings.ToLower(sku)
		if _, dup := seen[key]; dup {
			return NewStructuralError("variants.sku", "duplicate sku", vr.SKU)
		}
		seen[key] = struct{}{}

		if len(vr.Attributes) == 0 {
			return NewStructuralError("variants.attributes", "at least one attribute is required", vr.SKU)
		}
		for _, a := range vr.Attributes {
			if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.Value) == "" {
				return NewStructuralError("variants.attributes", "name and value cannot be empty", vr.SKU)
			}
		}
		if err := ValidatePricing("variants.", vr.Pricing); err != nil {
			return err
		}
		if err := validateStock("variants.", vr.Stock); err != nil {
			return err
		}
	}
	return nil
}

func ValidateTicketType(t *TicketType) error {
	if t.TenantID == "" {
		return NewStructuralError("tenant_id", "cannot be empty", t.TenantID)
	}
	if t.EventID == "" {
		return NewStructuralError("event_id", "cannot be empty", t.EventID)
	}
	if strings.TrimSpace(t.Name) == "" {
		return NewStructuralError("name", "cannot be empty", t.Name)
	}
	if err := ValidatePricing("", t.Pricing); err != nil {
		return err
	}
	if t.Capacity < 0 {
		return NewStructuralError("capacity", "must be non-negative", t.Capacity)
	}
	if t.QuantitySold < 0 || t.QuantitySold > t.Capacity {
		return NewStructuralError("quantity_sold", "must be between 0 and capacity", t.QuantitySold)
	}
	return nil
}

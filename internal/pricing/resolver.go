// Package pricing resolves the effective price of a sellable unit at a point in time.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the price a buyer pays at a given instant.
// OriginalPrice is only set while a sale is active.
type Quote struct {
	EffectivePrice decimal.Decimal  `json:"effective_price"`
	IsOnSale       bool             `json:"is_on_sale"`
	OriginalPrice  *decimal.Decimal `json:"original_price,omitempty"`
}

// Resolve picks between base and sale price. Both window bounds are inclusive and
// either may be open. A missing sale price never yields a sale, whatever the dates say.
func Resolve(base decimal.Decimal, sale *decimal.Decimal, saleStart, saleEnd *time.Time, now time.Time) Quote {
	if !IsSaleActive(sale, saleStart, saleEnd, now) {
		return Quote{EffectivePrice: base}
	}
	original := base
	return Quote{
		EffectivePrice: *sale,
		IsOnSale:       true,
		OriginalPrice:  &original,
	}
}

func IsSaleActive(sale *decimal.Decimal, saleStart, saleEnd *time.Time, now time.Time) bool {
	if sale == nil {
		return false
	}
	if saleStart != nil && now.Before(*saleStart) {
		return false
	}
	if saleEnd != nil && now.After(*saleEnd) {
		return false
	}
	return true
}

package repository

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/shopspring/decimal"
)

// jsonb maps a Go value onto a jsonb column.
type jsonb[T any] struct {
	V T
}

func (j *jsonb[T]) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		var zero T
		j.V = zero
		return nil
	case []byte:
		return json.Unmarshal(v, &j.V)
	case string:
		return json.Unmarshal([]byte(v), &j.V)
	default:
		return fmt.Errorf("jsonb: unsupported source %T", src)
	}
}

func (j jsonb[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.V)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// entryRow is one catalog_entries row. Simple-only columns are NULL for VARIABLE entries.
type entryRow struct {
	model.BaseModel
	TenantID      string                    `db:"tenant_id"`
	CategoryID    *string                   `db:"category_id"`
	Kind          model.EntryKind           `db:"kind"`
	Name          string                    `db:"name"`
	IsActive      bool                      `db:"is_active"`
	TrackStock    bool                      `db:"track_stock"`
	SKU           *string                   `db:"sku"`
	BasePrice     decimal.NullDecimal       `db:"base_price"`
	Cost          decimal.NullDecimal       `db:"cost"`
	SalePrice     decimal.NullDecimal       `db:"sale_price"`
	SaleStart     *time.Time                `db:"sale_start"`
	SaleEnd       *time.Time                `db:"sale_end"`
	StockQuantity *int64                    `db:"stock_quantity"`
	SoldQuantity  *int64                    `db:"sold_quantity"`
	Options       jsonb[[]model.OptionAxis] `db:"options"`
}

type variantRow struct {
	ID         string                   `db:"id"`
	EntryID    string                   `db:"entry_id"`
	Position   int                      `db:"position"`
	SKU        string                   `db:"sku"`
	Attributes jsonb[[]model.Attribute] `db:"attributes"`
	model.Pricing
	model.Stock
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const entryColumns = `id, tenant_id, category_id, kind, name, is_active, track_stock, sku,
	base_price, cost, sale_price, sale_start, sale_end, stock_quantity, sold_quantity, options,
	created_at, updated_at, created_by, updated_by, is_deleted, deleted_at`

const variantColumns = `id, entry_id, position, sku, attributes, base_price, cost, sale_price,
	sale_start, sale_end, stock_quantity, sold_quantity, created_at, updated_at`

func toRows(e *model.CatalogEntry) (entryRow, []variantRow) {
	row := entryRow{
		BaseModel:  e.BaseModel,
		TenantID:   e.TenantID,
		Kind:       e.Kind(),
		Name:       e.Name,
		IsActive:   e.IsActive,
		TrackStock: e.TrackStock,
	}
	if e.CategoryID != "" {
		cat := e.CategoryID
		row.CategoryID = &cat
	}

	switch it := e.Item.(type) {
	case *model.SimpleItem:
		sku := it.SKU
		stock, sold := it.StockQuantity, it.SoldQuantity
		row.SKU = &sku
		row.BasePrice = decimal.NewNullDecimal(it.BasePrice)
		row.Cost = decimal.NewNullDecimal(it.Cost)
		if it.SalePrice != nil {
			row.SalePrice = decimal.NewNullDecimal(*it.SalePrice)
		}
		row.SaleStart = it.SaleStart
		row.SaleEnd = it.SaleEnd
		row.StockQuantity = &stock
		row.SoldQuantity = &sold
		return row, nil
	case *model.VariableItem:
		row.Options = jsonb[[]model.OptionAxis]{V: it.Options}
		variants := make([]variantRow, len(it.Variants))
		for i, v := range it.Variants {
			variants[i] = variantRow{
				ID:         v.ID,
				EntryID:    e.ID,
				Position:   i,
				SKU:        v.SKU,
				Attributes: jsonb[[]model.Attribute]{V: v.Attributes},
				Pricing:    v.Pricing,
				Stock:      v.Stock,
				CreatedAt:  e.UpdatedAt,
				UpdatedAt:  e.UpdatedAt,
			}
		}
		return row, variants
	}
	return row, nil
}

func fromRows(row entryRow, variants []variantRow) (*model.CatalogEntry, error) {
	e := &model.CatalogEntry{
		BaseModel:  row.BaseModel,
		TenantID:   row.TenantID,
		Name:       row.Name,
		IsActive:   row.IsActive,
		TrackStock: row.TrackStock,
	}
	if row.CategoryID != nil {
		e.CategoryID = *row.CategoryID
	}

	switch row.Kind {
	case model.EntryKindSimple:
		s := &model.SimpleItem{}
		if row.SKU != nil {
			s.SKU = *row.SKU
		}
		s.BasePrice = row.BasePrice.Decimal
		s.Cost = row.Cost.Decimal
		if row.SalePrice.Valid {
			sp := row.SalePrice.Decimal
			s.SalePrice = &sp
		}
		s.SaleStart = row.SaleStart
		s.SaleEnd = row.SaleEnd
		if row.StockQuantity != nil {
			s.StockQuantity = *row.StockQuantity
		}
		if row.SoldQuantity != nil {
			s.SoldQuantity = *row.SoldQuantity
		}
		e.Item = s
	case model.EntryKindVariable:
		v := &model.VariableItem{Options: row.Options.V, Variants: make([]model.Variant, 0, len(variants))}
		for _, vr := range variants {
			v.Variants = append(v.Variants, model.Variant{
				ID:         vr.ID,
				SKU:        vr.SKU,
				Attributes: vr.Attributes.V,
				Pricing:    vr.Pricing,
				Stock:      vr.Stock,
			})
		}
		e.Item = v
	default:
		return nil, fmt.Errorf("catalog entry %s has unknown kind %q", row.ID, row.Kind)
	}
	return e, nil
}

package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/pricing"
	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	EntryKindSimple   EntryKind = "SIMPLE"
	EntryKindVariable EntryKind = "VARIABLE"
)

func (k EntryKind) Valid() bool {
	return k == EntryKindSimple || k == EntryKindVariable
}

// Pricing is the money shape shared by simple entries, variants and ticket types.
type Pricing struct {
	BasePrice decimal.Decimal  `db:"base_price" json:"base_price"`
	Cost      decimal.Decimal  `db:"cost" json:"cost"`
	SalePrice *decimal.Decimal `db:"sale_price" json:"sale_price,omitempty"`
	SaleStart *time.Time       `db:"sale_start" json:"sale_start,omitempty"`
	SaleEnd   *time.Time       `db:"sale_end" json:"sale_end,omitempty"`
}

func (p Pricing) Resolve(now time.Time) pricing.Quote {
	return pricing.Resolve(p.BasePrice, p.SalePrice, p.SaleStart, p.SaleEnd, now)
}

// Stock is a product-style counter pair: a sale moves units from StockQuantity to
// SoldQuantity, so their sum is conserved.
type Stock struct {
	StockQuantity int64 `db:"stock_quantity" json:"stock_quantity"`
	SoldQuantity  int64 `db:"sold_quantity" json:"sold_quantity"`
}

func (s Stock) Capacity() int64 {
	return s.StockQuantity + s.SoldQuantity
}

// Item is the kind-specific payload of a CatalogEntry. Only *SimpleItem and
// *VariableItem implement it.
type Item interface {
	Kind() EntryKind
	clone() Item
}

type SimpleItem struct {
	SKU string `json:"sku"`
	Pricing
	Stock
}

func (*SimpleItem) Kind() EntryKind { return EntryKindSimple }

func (s *SimpleItem) clone() Item {
	c := *s
	c.Pricing = s.Pricing.clone()
	return &c
}

// OptionAxis is informational for UIs; variants are not checked against it.
type OptionAxis struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Variant struct {
	ID         string      `json:"id"`
	Attributes []Attribute `json:"attributes"`
	SKU        string      `json:"sku"`
	Pricing
	Stock
}

type VariableItem struct {
	Options  []OptionAxis `json:"options"`
	Variants []Variant    `json:"variants"`
}

func (*VariableItem) Kind() EntryKind { return EntryKindVariable }

func (v *VariableItem) clone() Item {
	c := &VariableItem{
		Options:  make([]OptionAxis, len(v.Options)),
		Variants: make([]Variant, len(v.Variants)),
	}
	for i, o := range v.Options {
		c.Options[i] = OptionAxis{Name: o.Name, Values: append([]string(nil), o.Values...)}
	}
	for i, vr := range v.Variants {
		vr.Attributes = append([]Attribute(nil), vr.Attributes...)
		vr.Pricing = vr.Pricing.clone()
		c.Variants[i] = vr
	}
	return c
}

func (v *VariableItem) FindVariant(id string) (*Variant, bool) {
	for i := range v.Variants {
		if v.Variants[i].ID == id {
			return &v.Variants[i], true
		}
	}
	return nil, false
}

func (p Pricing) clone() Pricing {
	c := p
	if p.SalePrice != nil {
		sp := *p.SalePrice
		c.SalePrice = &sp
	}
	if p.SaleStart != nil {
		st := *p.SaleStart
		c.SaleStart = &st
	}
	if p.SaleEnd != nil {
		en := *p.SaleEnd
		c.SaleEnd = &en
	}
	return c
}

// CatalogEntry is a sellable item definition. Item holds the kind-specific payload.
type CatalogEntry struct {
	BaseModel
	TenantID   string
	CategoryID string
	Name       string
	IsActive   bool
	TrackStock bool
	Item       Item
}

func (e *CatalogEntry) Kind() EntryKind {
	if e.Item == nil {
		return ""
	}
	return e.Item.Kind()
}

func (e *CatalogEntry) Simple() (*SimpleItem, bool) {
	s, ok := e.Item.(*SimpleItem)
	return s, ok
}

func (e *CatalogEntry) Variable() (*VariableItem, bool) {
	v, ok := e.Item.(*VariableItem)
	return v, ok
}

func (e *CatalogEntry) Clone() *CatalogEntry {
	c := *e
	if e.Item != nil {
		c.Item = e.Item.clone()
	}
	return &c
}

// NewItem builds the payload for kind, rejecting the payload shape that belongs to the other kind.
func NewItem(kind EntryKind, simple *SimpleItem, variable *VariableItem) (Item, error) {
	switch kind {
	case EntryKindSimple:
		if variable != nil {
			return nil, NewStructuralError("variable", "forbidden for SIMPLE entries", kind)
		}
		if simple == nil {
			return nil, NewStructuralError("simple", "required for SIMPLE entries", kind)
		}
		return simple, nil
	case EntryKindVariable:
		if simple != nil {
			return nil, NewStructuralError("simple", "forbidden for VARIABLE entries", kind)
		}
		if variable == nil {
			return nil, NewStructuralError("variable", "required for VARIABLE entries", kind)
		}
		return variable, nil
	default:
		return nil, NewStructuralError("kind", "must be SIMPLE or VARIABLE", kind)
	}
}

type entryJSON struct {
	BaseModel
	TenantID   string        `json:"tenant_id"`
	CategoryID string        `json:"category_id"`
	Name       string        `json:"name"`
	IsActive   bool          `json:"is_active"`
	TrackStock bool          `json:"track_stock"`
	Kind       EntryKind     `json:"kind"`
	Simple     *SimpleItem   `json:"simple,omitempty"`
	Variable   *VariableItem `json:"variable,omitempty"`
}

func (e CatalogEntry) MarshalJSON() ([]byte, error) {
	out := entryJSON{
		BaseModel:  e.BaseModel,
		TenantID:   e.TenantID,
		CategoryID: e.CategoryID,
		Name:       e.Name,
		IsActive:   e.IsActive,
		TrackStock: e.TrackStock,
		Kind:       e.Kind(),
	}
	switch it := e.Item.(type) {
	case *SimpleItem:
		out.Simple = it
	case *VariableItem:
		out.Variable = it
	}
	return json.Marshal(out)
}

func (e *CatalogEntry) UnmarshalJSON(b []byte) error {
	var in entryJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	item, err := NewItem(in.Kind, in.Simple, in.Variable)
	if err != nil {
		return fmt.Errorf("decode catalog entry %s: %w", in.ID, err)
	}
	*e = CatalogEntry{
		BaseModel:  in.BaseModel,
		TenantID:   in.TenantID,
		CategoryID: in.CategoryID,
		Name:       in.Name,
		IsActive:   in.IsActive,
		TrackStock: in.TrackStock,
		Item:       item,
	}
	return nil
}

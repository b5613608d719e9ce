package model

import (
	"fmt"
	"time"
)

type CounterScope string

const (
	CounterScopeEntry      CounterScope = "entry"
	CounterScopeTicketType CounterScope = "ticket_type"
)

// CounterRef identifies one (stock, sold) pair: a simple entry, one variant of a
// variable entry, or a ticket type.
type CounterRef struct {
	TenantID  string       `json:"tenant_id"`
	Scope     CounterScope `json:"scope"`
	ID        string       `json:"id"`
	VariantID string       `json:"variant_id,omitempty"`
}

func EntryCounter(tenantID, entryID, variantID string) CounterRef {
	return CounterRef{TenantID: tenantID, Scope: CounterScopeEntry, ID: entryID, VariantID: variantID}
}

func TicketCounter(tenantID, ticketTypeID string) CounterRef {
	return CounterRef{TenantID: tenantID, Scope: CounterScopeTicketType, ID: ticketTypeID}
}

// Resource names the record a NotFoundError for this ref should point at.
func (r CounterRef) Resource() string {
	switch {
	case r.Scope == CounterScopeTicketType:
		return "ticket_type"
	case r.VariantID != "":
		return "variant"
	default:
		return "catalog_entry"
	}
}

func (r CounterRef) String() string {
	if r.VariantID != "" {
		return fmt.Sprintf("%s:%s/%s", r.Scope, r.ID, r.VariantID)
	}
	return fmt.Sprintf("%s:%s", r.Scope, r.ID)
}

// CounterSnapshot is the state of a counter pair right after a ledger operation.
// For ticket types StockQuantity is the remaining capacity.
type CounterSnapshot struct {
	Ref           CounterRef `json:"ref"`
	StockQuantity int64      `json:"stock_quantity"`
	SoldQuantity  int64      `json:"sold_quantity"`
}

func (c CounterSnapshot) Capacity() int64 {
	return c.StockQuantity + c.SoldQuantity
}

type MovementType string

const (
	MovementSale       MovementType = "sale"
	MovementReturn     MovementType = "return"
	MovementAdjustment MovementType = "adjustment"
)

type InventoryMovement struct {
	ID            string       `db:"id" json:"id"`
	TenantID      string       `db:"tenant_id" json:"tenant_id"`
	Scope         CounterScope `db:"scope" json:"scope"`
	TargetID      string       `db:"target_id" json:"target_id"`
	VariantID     *string      `db:"variant_id" json:"variant_id,omitempty"`
	MovementType  MovementType `db:"movement_type" json:"movement_type"`
	Quantity      int64        `db:"quantity" json:"quantity"`
	StockBefore   int64        `db:"stock_before" json:"stock_before"`
	StockAfter    int64        `db:"stock_after" json:"stock_after"`
	SoldBefore    int64        `db:"sold_before" json:"sold_before"`
	SoldAfter     int64        `db:"sold_after" json:"sold_after"`
	ReferenceType *string      `db:"reference_type" json:"reference_type,omitempty"`
	ReferenceID   *string      `db:"reference_id" json:"reference_id,omitempty"`
	CreatedBy     *string      `db:"created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
}

func (m *InventoryMovement) Ref() CounterRef {
	ref := CounterRef{TenantID: m.TenantID, Scope: m.Scope, ID: m.TargetID}
	if m.VariantID != nil {
		ref.VariantID = *m.VariantID
	}
	return ref
}

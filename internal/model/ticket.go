package model

// TicketType is sold against a fixed capacity: a sale raises QuantitySold and
// Capacity never moves.
type TicketType struct {
	BaseModel
	TenantID string `db:"tenant_id" json:"tenant_id"`
	EventID  string `db:"event_id" json:"event_id"`
	Name     string `db:"name" json:"name"`
	Pricing
	Capacity     int64 `db:"capacity" json:"capacity"`
	QuantitySold int64 `db:"quantity_sold" json:"quantity_sold"`
	IsActive     bool  `db:"is_active" json:"is_active"`
}

func (t *TicketType) Available() int64 {
	return t.Capacity - t.QuantitySold
}

func (t *TicketType) Clone() *TicketType {
	c := *t
	c.Pricing = t.Pricing.clone()
	return &c
}

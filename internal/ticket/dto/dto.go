package dto

import (
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pricing"
	"github.com/shopspring/decimal"
)

type TicketTypeFilters struct {
	TenantID string
	EventID  string
	IsActive *bool
	Page     int
	PageSize int
}

type TicketTypeView struct {
	TicketType *model.TicketType `json:"ticket_type"`
	Price      pricing.Quote     `json:"price"`
}

type CreateTicketTypeInput struct {
	TenantID string
	ActorID  string
	EventID  string
	Name     string
	Pricing  model.Pricing
	Capacity int64
	IsActive bool
}

// UpdateTicketTypeInput carries the structural fields only. Capacity moves through the
// ledger's Adjust.
type UpdateTicketTypeInput struct {
	ID       string
	TenantID string
	ActorID  string
	Name     string
	Pricing  model.Pricing
	IsActive bool
}

type TicketSaleInput struct {
	TenantID      string
	ActorID       string
	TicketTypeID  string
	Quantity      int64
	ReferenceType string
	ReferenceID   string
}

// TicketSale is the counter after a sell or return, priced at the moment it happened.
type TicketSale struct {
	Counter *model.CounterSnapshot `json:"counter"`
	Price   pricing.Quote          `json:"price"`
	Total   decimal.Decimal        `json:"total"`
}

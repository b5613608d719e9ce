package dto

import "github.com/fekuna/omnipos-catalog-service/internal/model"

// LedgerInput drives a reserve or release.
type LedgerInput struct {
	Ref           model.CounterRef
	Quantity      int64
	ReferenceType string // 'order', 'ticket_sale', 'manual'
	ReferenceID   string
	ActorID       string
}

type AdjustInput struct {
	Ref           model.CounterRef
	Delta         int64
	ReferenceType string
	ReferenceID   string
	ActorID       string
}

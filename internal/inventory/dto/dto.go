package dto

import "github.com/fekuna/omnipos-catalog-service/internal/model"

type MovementFilters struct {
	TenantID     string
	Scope        model.CounterScope
	TargetID     string
	VariantID    string // Empty means every variant of TargetID
	MovementType model.MovementType
	ReferenceID  string
	Page         int
	PageSize     int
}

package catalog

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/pricing"
)

type UseCase interface {
	CreateEntry(ctx context.Context, input *dto.CreateEntryInput) (*dto.EntryView, error)
	GetEntry(ctx context.Context, tenantID, id string) (*dto.EntryView, error)
	ListEntries(ctx context.Context, filters *dto.EntryFilters) ([]dto.EntryView, int, error)
	UpdateEntry(ctx context.Context, input *dto.UpdateEntryInput) (*dto.EntryView, error)
	DeleteEntry(ctx context.Context, tenantID, id, actorID string) error

	// ResolvePrice quotes an entry, or one of its variants, at the current clock time.
	ResolvePrice(ctx context.Context, tenantID, entryID, variantID string) (*pricing.Quote, error)
}

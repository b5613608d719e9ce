package ticket

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/ticket/dto"
)

// Repository stores ticket types. Capacity and QuantitySold are written on Create only;
// afterwards they belong to the inventory ledger.
type Repository interface {
	Create(ctx context.Context, t *model.TicketType) error
	FindByID(ctx context.Context, tenantID, id string) (*model.TicketType, error)
	FindAll(ctx context.Context, filters *dto.TicketTypeFilters) ([]model.TicketType, int, error)
	Update(ctx context.Context, t *model.TicketType) error
	SoftDelete(ctx context.Context, tenantID, id, actorID string, at time.Time) error
}

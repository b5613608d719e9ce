package ticket

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/ticket/dto"
)

type UseCase interface {
	CreateTicketType(ctx context.Context, input *dto.CreateTicketTypeInput) (*dto.TicketTypeView, error)
	GetTicketType(ctx context.Context, tenantID, id string) (*dto.TicketTypeView, error)
	ListTicketTypes(ctx context.Context, filters *dto.TicketTypeFilters) ([]dto.TicketTypeView, int, error)
	UpdateTicketType(ctx context.Context, input *dto.UpdateTicketTypeInput) (*dto.TicketTypeView, error)
	DeleteTicketType(ctx context.Context, tenantID, id, actorID string) error

	SellTicket(ctx context.Context, input *dto.TicketSaleInput) (*dto.TicketSale, error)
	ReturnTicket(ctx context.Context, input *dto.TicketSaleInput) (*dto.TicketSale, error)
}

package category

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/category/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, tenantID, id string) (*model.Category, error)
	FindAll(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error)
	Update(ctx context.Context, category *model.Category) error
	// SoftDelete hides the category and moves its live children to the root.
	SoftDelete(ctx context.Context, tenantID, id, actorID string, at time.Time) error
	ExistingIDs(ctx context.Context, tenantID string, ids []string) ([]string, error)
}

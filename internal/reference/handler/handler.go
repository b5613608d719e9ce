package handler

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/rpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const ServiceName = "omnipos.catalog.v1.ReferenceService"

type Checker interface {
	CheckAllExist(ctx context.Context, tenantID string, ids []model.ReferenceID) error
}

type CheckAllExistRequest struct {
	References []model.ReferenceID `json:"references"`
}

// CheckAllExistResponse reports a failed check as data so callers get the exact missing subset.
type CheckAllExistResponse struct {
	OK      bool                `json:"ok"`
	Missing []model.ReferenceID `json:"missing"`
}

type ReferenceHandler struct {
	checker Checker
	logger  logger.ZapLogger
}

func NewReferenceHandler(checker Checker, log logger.ZapLogger) *ReferenceHandler {
	return &ReferenceHandler{
		checker: checker,
		logger:  log,
	}
}

func (h *ReferenceHandler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(rpc.NewServiceDesc(ServiceName,
		rpc.Unary(ServiceName, "CheckAllExist", h.CheckAllExist),
	), h)
}

func (h *ReferenceHandler) CheckAllExist(ctx context.Context, req *CheckAllExistRequest) (*CheckAllExistResponse, error) {
	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		return nil, rpc.ErrMissingTenant
	}

	err := h.checker.CheckAllExist(ctx, tenantID, req.References)
	if err == nil {
		return &CheckAllExistResponse{OK: true, Missing: []model.ReferenceID{}}, nil
	}

	var missing *model.MissingReferencesError
	if errors.As(err, &missing) {
		return &CheckAllExistResponse{Missing: missing.Missing}, nil
	}

	h.logger.Error("reference check failed", zap.String("tenant_id", tenantID), zap.Error(err))
	return nil, rpc.ToStatus(err)
}

package rpc

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrMissingTenant is returned by handlers when no tenant reached the request context.
var ErrMissingTenant = status.Error(codes.Unauthenticated, "missing tenant")

// Code maps a domain error to its gRPC status code.
func Code(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case model.IsStructuralError(err):
		return codes.InvalidArgument
	case model.IsConflictError(err):
		return codes.AlreadyExists
	case model.IsInsufficientInventoryError(err), model.IsOverReleaseError(err):
		return codes.FailedPrecondition
	case model.IsMissingReferencesError(err):
		return codes.FailedPrecondition
	case model.IsNotFoundError(err):
		return codes.NotFound
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	}
	if s, ok := status.FromError(err); ok {
		return s.Code()
	}
	return codes.Internal
}

// ToStatus converts err into a status error. Internal errors hide their message.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	var already interface{ GRPCStatus() *status.Status }
	if errors.As(err, &already) {
		return err
	}
	code := Code(err)
	if code == codes.Internal {
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}

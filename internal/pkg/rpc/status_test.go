package rpc

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestCode(t *testing.T) {
	ref := model.EntryCounter("t1", "e1", "")
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"nil", nil, codes.OK},
		{"structural", model.NewStructuralError("name", "cannot be empty", ""), codes.InvalidArgument},
		{"conflict", model.NewConflictError("sku", "A-1"), codes.AlreadyExists},
		{"insufficient", model.NewInsufficientInventoryError(ref, 5, 2), codes.FailedPrecondition},
		{"over release", model.NewOverReleaseError(ref, 5, 2), codes.FailedPrecondition},
		{"missing refs", model.NewMissingReferencesError([]model.ReferenceID{{Kind: model.ReferenceKindCategory, ID: "c1"}}), codes.FailedPrecondition},
		{"not found", model.NewNotFoundError("catalog_entry", "e1"), codes.NotFound},
		{"wrapped not found", fmt.Errorf("get: %w", model.NewNotFoundError("catalog_entry", "e1")), codes.NotFound},
		{"status passthrough", status.Error(codes.Unauthenticated, "x"), codes.Unauthenticated},
		{"infra", errors.New("connection refused"), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.want {
				t.Errorf("Code() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToStatus(t *testing.T) {
	err := ToStatus(model.NewMissingReferencesError([]model.ReferenceID{{Kind: model.ReferenceKindCatalogEntry, ID: "id2"}}))
	s, _ := status.FromError(err)
	if s.Code() != codes.FailedPrecondition {
		t.Fatalf("expected FailedPrecondition, got %v", s.Code())
	}
	if !strings.Contains(s.Message(), "catalog_entry:id2") {
		t.Errorf("expected missing id in message, got %q", s.Message())
	}

	err = ToStatus(errors.New("pq: password authentication failed"))
	s, _ = status.FromError(err)
	if s.Code() != codes.Internal || strings.Contains(s.Message(), "password") {
		t.Errorf("internal errors must be opaque, got %v %q", s.Code(), s.Message())
	}

	if ToStatus(nil) != nil {
		t.Error("expected nil for nil error")
	}
}

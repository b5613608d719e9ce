package handler

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-catalog-service/internal/inventory/repository"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/clock"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/rpc"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/rpc/rpctest"
	"github.com/fekuna/omnipos-catalog-service/internal/storage/memory"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func setup(t *testing.T) (*grpc.ClientConn, string) {
	t.Helper()
	store := memory.NewStore()
	ticketID := uuid.NewString()
	_ = store.Update(context.Background(), func(d *memory.Data) error {
		d.TicketTypes[ticketID] = &model.TicketType{BaseModel: model.BaseModel{ID: ticketID}, TenantID: "t1", Capacity: 5}
		return nil
	})

	uc := usecase.NewInventoryUseCase(repository.NewMemoryRepository(store), nil, nil, clock.New(), nil, logger.NewNopLogger())
	h := NewInventoryHandler(uc, logger.NewNopLogger())
	return rpctest.Serve(t, h.Register), ticketID
}

func TestReserveAndReleaseOverGRPC(t *testing.T) {
	conn, ticketID := setup(t)
	ctx := rpctest.TenantContext("t1", "u1")
	counter := CounterRequest{Scope: model.CounterScopeTicketType, ID: ticketID}

	var out CounterResponse
	err := rpc.Invoke(ctx, conn, ServiceName, "Reserve", &LedgerRequest{CounterRequest: counter, Quantity: 3}, &out)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if out.Counter.SoldQuantity != 3 || out.Counter.StockQuantity != 2 {
		t.Errorf("unexpected counter %+v", out.Counter)
	}

	err = rpc.Invoke(ctx, conn, ServiceName, "Reserve", &LedgerRequest{CounterRequest: counter, Quantity: 3}, &out)
	if status.Code(err) != codes.FailedPrecondition {
		t.Errorf("expected FailedPrecondition for oversell, got %v", err)
	}

	err = rpc.Invoke(ctx, conn, ServiceName, "Release", &LedgerRequest{CounterRequest: counter, Quantity: 4}, &out)
	if status.Code(err) != codes.FailedPrecondition {
		t.Errorf("expected FailedPrecondition for over release, got %v", err)
	}

	var list ListMovementsResponse
	err = rpc.Invoke(ctx, conn, ServiceName, "ListMovements", &ListMovementsRequest{CounterRequest: counter}, &list)
	if err != nil {
		t.Fatalf("list movements: %v", err)
	}
	if list.Total != 1 || *list.Movements[0].CreatedBy != "u1" {
		t.Errorf("unexpected movements %+v", list)
	}
}

func TestInventoryErrorsOverGRPC(t *testing.T) {
	conn, ticketID := setup(t)

	tests := []struct {
		name   string
		ctx    context.Context
		method string
		req    interface{}
		want   codes.Code
	}{
		{"missing tenant", context.Background(), "GetCounter", &CounterRequest{ID: ticketID}, codes.Unauthenticated},
		{"foreign tenant", rpctest.TenantContext("t2", "u1"), "GetCounter",
			&CounterRequest{Scope: model.CounterScopeTicketType, ID: ticketID}, codes.NotFound},
		{"zero quantity", rpctest.TenantContext("t1", "u1"), "Reserve",
			&LedgerRequest{CounterRequest: CounterRequest{Scope: model.CounterScopeTicketType, ID: ticketID}}, codes.InvalidArgument},
		{"malformed id", rpctest.TenantContext("t1", "u1"), "Reserve",
			&LedgerRequest{CounterRequest: CounterRequest{ID: "xyz"}, Quantity: 1}, codes.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out CounterResponse
			err := rpc.Invoke(tt.ctx, conn, ServiceName, tt.method, tt.req, &out)
			if status.Code(err) != tt.want {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

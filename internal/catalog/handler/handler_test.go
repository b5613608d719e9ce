package handler

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/catalog/repository"
	"github.com/fekuna/omnipos-catalog-service/internal/catalog/usecase"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/clock"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/rpc"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/rpc/rpctest"
	"github.com/fekuna/omnipos-catalog-service/internal/storage/memory"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func setup(t *testing.T) *grpc.ClientConn {
	t.Helper()
	clk := clock.NewFixed(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))
	uc := usecase.NewCatalogUseCase(repository.NewMemoryRepository(memory.NewStore()), nil, clk, logger.NewNopLogger())
	return rpctest.Serve(t, NewCatalogHandler(uc, clk, logger.NewNopLogger()).Register)
}

func mug() *CreateEntryRequest {
	return &CreateEntryRequest{EntryFields: EntryFields{
		Name: "Mug",
		Kind: model.EntryKindSimple,
		Simple: &model.SimpleItem{
			SKU:     "MUG-1",
			Pricing: model.Pricing{BasePrice: decimal.RequireFromString("12.50")},
			Stock:   model.Stock{StockQuantity: 4},
		},
	}}
}

func TestEntryLifecycleOverGRPC(t *testing.T) {
	conn := setup(t)
	ctx := rpctest.TenantContext("t1", "u1")

	var created EntryResponse
	if err := rpc.Invoke(ctx, conn, ServiceName, "CreateEntry", mug(), &created); err != nil {
		t.Fatalf("create: %v", err)
	}
	id := created.Entry.ID
	if !created.Entry.IsActive || created.Price == nil || !created.Price.EffectivePrice.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("unexpected create response %+v", created)
	}

	var dup EntryResponse
	err := rpc.Invoke(ctx, conn, ServiceName, "CreateEntry", mug(), &dup)
	if status.Code(err) != codes.AlreadyExists {
		t.Errorf("expected AlreadyExists for duplicate, got %v", err)
	}

	var list ListEntriesResponse
	if err := rpc.Invoke(ctx, conn, ServiceName, "ListEntries", &ListEntriesRequest{Query: "mu"}, &list); err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 1 || list.Entries[0].Entry.ID != id {
		t.Errorf("unexpected list %+v", list)
	}

	var other ListEntriesResponse
	_ = rpc.Invoke(rpctest.TenantContext("t2", "u9"), conn, ServiceName, "ListEntries", &ListEntriesRequest{}, &other)
	if other.Total != 0 {
		t.Errorf("tenant t2 must not see t1 entries, got %d", other.Total)
	}

	var quote ResolvePriceResponse
	if err := rpc.Invoke(ctx, conn, ServiceName, "ResolvePrice", &ResolvePriceRequest{ID: id}, &quote); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if quote.Quote.IsOnSale {
		t.Errorf("unexpected sale %+v", quote)
	}

	var empty rpc.Empty
	if err := rpc.Invoke(ctx, conn, ServiceName, "DeleteEntry", &EntryRequest{ID: id}, &empty); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var got EntryResponse
	err = rpc.Invoke(ctx, conn, ServiceName, "GetEntry", &EntryRequest{ID: id}, &got)
	if status.Code(err) != codes.NotFound {
		t.Errorf("expected NotFound after delete, got %v", err)
	}
}

func TestResolveAdHocPricing(t *testing.T) {
	conn := setup(t)
	sale := decimal.NewFromInt(8)
	end := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	var out ResolvePriceResponse
	err := rpc.Invoke(context.Background(), conn, ServiceName, "ResolvePrice", &ResolvePriceRequest{
		Pricing: &model.Pricing{BasePrice: decimal.NewFromInt(10), SalePrice: &sale, SaleEnd: &end},
	}, &out)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !out.Quote.IsOnSale || !out.Quote.EffectivePrice.Equal(sale) {
		t.Errorf("sale end is inclusive, got %+v", out.Quote)
	}
}

func TestCatalogErrorsOverGRPC(t *testing.T) {
	conn := setup(t)
	ctx := rpctest.TenantContext("t1", "u1")

	tests := []struct {
		name   string
		ctx    context.Context
		method string
		req    interface{}
		want   codes.Code
	}{
		{"missing tenant", context.Background(), "CreateEntry", mug(), codes.Unauthenticated},
		{"bad kind", ctx, "CreateEntry", &CreateEntryRequest{EntryFields: EntryFields{Name: "x", Kind: "BUNDLE"}}, codes.InvalidArgument},
		{"unknown entry", ctx, "GetEntry", &EntryRequest{ID: "00000000-0000-0000-0000-000000000001"}, codes.NotFound},
		{"malformed id", ctx, "UpdateEntry", &UpdateEntryRequest{ID: "abc"}, codes.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out EntryResponse
			err := rpc.Invoke(tt.ctx, conn, ServiceName, tt.method, tt.req, &out)
			if status.Code(err) != tt.want {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

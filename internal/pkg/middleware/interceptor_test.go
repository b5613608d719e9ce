package middleware

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var info = &grpc.UnaryServerInfo{FullMethod: "/omnipos.catalog.v1.CatalogService/GetEntry"}

func TestContextInterceptor(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(auth.TenantHeader, "t1", auth.ActorHeader, "u1"))

	var gotTenant, gotActor string
	_, err := ContextInterceptor()(ctx, nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		gotTenant = auth.GetTenantID(ctx)
		gotActor = auth.GetActorID(ctx)
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTenant != "t1" || gotActor != "u1" {
		t.Errorf("expected t1/u1, got %s/%s", gotTenant, gotActor)
	}
}

func TestRecoveryInterceptor(t *testing.T) {
	_, err := RecoveryInterceptor(logger.NewNopLogger())(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		panic("boom")
	})
	if status.Code(err) != codes.Internal {
		t.Fatalf("expected Internal, got %v", err)
	}
}

func TestLoggingInterceptorRecordsCode(t *testing.T) {
	m := metrics.New("test", prometheus.NewRegistry())
	interceptor := LoggingInterceptor(logger.NewNopLogger(), m)

	_, _ = interceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.NotFound, "gone")
	})

	got := testutil.ToFloat64(m.RPCRequestsTotal.WithLabelValues(info.FullMethod, codes.NotFound.String()))
	if got != 1 {
		t.Errorf("expected 1 NotFound request, got %v", got)
	}
}

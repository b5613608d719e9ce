// Package rpctest starts in-memory gRPC servers for handler tests.
package rpctest

import (
	"context"
	"net"
	"testing"

	"github.com/fekuna/omnipos-catalog-service/internal/pkg/middleware"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
)

// Serve registers services on a bufconn backed server with the context interceptor and
// returns a client connection. Both are closed when the test ends.
func Serve(t *testing.T, register func(s grpc.ServiceRegistrar)) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(middleware.ContextInterceptor()))
	register(srv)
	go srv.Serve(lis)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufconn: %v", err)
	}

	t.Cleanup(func() {
		conn.Close()
		srv.Stop()
	})
	return conn
}

// TenantContext returns a context carrying tenant and actor metadata.
func TenantContext(tenantID, actorID string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "x-tenant-id", tenantID, "x-user-id", actorID)
}

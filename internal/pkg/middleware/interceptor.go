package middleware

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/metrics"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ContextInterceptor copies the tenant and actor headers from incoming metadata into the context.
func ContextInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(auth.TenantHeader); len(v) > 0 && v[0] != "" {
				ctx = auth.WithTenantID(ctx, v[0])
			}
			if v := md.Get(auth.ActorHeader); len(v) > 0 && v[0] != "" {
				ctx = auth.WithActorID(ctx, v[0])
			}
		}
		return handler(ctx, req)
	}
}

// LoggingInterceptor logs every call with its status code and records request metrics.
func LoggingInterceptor(log logger.ZapLogger, m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)

		m.ObserveRPC(info.FullMethod, code.String(), start)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.String("tenant_id", auth.GetTenantID(ctx)),
			zap.Duration("duration", time.Since(start)),
		}
		switch code {
		case codes.OK:
			log.Debug("grpc request", fields...)
		case codes.Internal, codes.Unknown:
			log.Error("grpc request failed", append(fields, zap.Error(err))...)
		default:
			log.Info("grpc request rejected", append(fields, zap.Error(err))...)
		}
		return resp, err
	}
}

// RecoveryInterceptor turns a handler panic into an Internal status.
func RecoveryInterceptor(log logger.ZapLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic in grpc handler",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
				)
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

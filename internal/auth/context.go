package auth

import (
	"context"

	"google.golang.org/grpc/metadata"
)

type contextKey string

const (
	tenantIDKey contextKey = "tenant_id"
	actorIDKey  contextKey = "actor_id"

	TenantHeader = "x-tenant-id"
	ActorHeader  = "x-user-id"
)

func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorIDKey, actorID)
}

// GetTenantID returns the tenant placed in the context by the interceptor, falling back
// to incoming metadata.
func GetTenantID(ctx context.Context) string {
	if val, ok := ctx.Value(tenantIDKey).(string); ok && val != "" {
		return val
	}
	return fromMetadata(ctx, TenantHeader)
}

func GetActorID(ctx context.Context) string {
	if val, ok := ctx.Value(actorIDKey).(string); ok && val != "" {
		return val
	}
	if val := fromMetadata(ctx, ActorHeader); val != "" {
		return val
	}
	return "unknown"
}

func fromMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if val := md.Get(key); len(val) > 0 {
		return val[0]
	}
	return ""
}

// internal/common/context.go
package common

import "context"

// contextKey namespaces values stored on a request context so packages
// never collide on plain string keys.
type contextKey string

const (
	TenantIDKey  = contextKey("tenant-id")
	RequestIDKey = contextKey("request-id")
	SessionKey   = contextKey("session")
	UserKey      = contextKey("user")
)

// GetTenantID extracts tenant ID from context
func GetTenantID(ctx context.Context) string {
	if tenantID, ok := ctx.Value(TenantIDKey).(string); ok {
		return tenantID
	}
	return "default"
}

// WithTenantID adds tenant ID to context
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, TenantIDKey, tenantID)
}

// GetRequestID extracts the request id attached with WithRequestID, or ""
// if none was attached.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID attaches a request id to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

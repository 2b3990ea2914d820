// internal/api/context_keys.go
package api

import (
	"context"

	"github.com/charted-dev/charted/internal/auth"
)

type contextKey string

const identityKey contextKey = "identity"

func identityFromContext(ctx context.Context) *auth.Identity {
	identity, _ := ctx.Value(identityKey).(*auth.Identity)
	return identity
}

func withIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

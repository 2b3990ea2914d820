// internal/auth/policy.go
package auth

import "github.com/charted-dev/charted/internal/common"

// Policy is the per-route authentication requirement the gate evaluates a
// request against, matching spec.md §4.9's
// {allow_unauthenticated, require_refresh_token, required_scopes} triple.
type Policy struct {
	AllowUnauthenticated bool
	RequireRefreshToken  bool
	RequiredScopes       *common.ApiKeyScope
}

// Public is the policy for routes any caller, authenticated or not, may hit.
func Public() Policy { return Policy{AllowUnauthenticated: true} }

// Authenticated is the policy for routes that require any valid credential.
func Authenticated() Policy { return Policy{} }

// RequiringScopes is the policy for API-key-gated routes.
func RequiringScopes(bits uint64) Policy {
	return Policy{RequiredScopes: common.NewApiKeyScope(bits)}
}

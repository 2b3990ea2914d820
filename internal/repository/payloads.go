// internal/repository/payloads.go
package repository

// Patch payload fields use *string so "absent" (nil), "empty string"
// (set column NULL), and "non-empty string" (overwrite) are all
// distinguishable, per spec.md §4.6's patch semantics. Boolean flags always
// overwrite when present, so they use *bool for absent-vs-present only.

type UserPatch struct {
	Name          *string
	DisplayName   *string
	Email         *string
	Description   *string
	GravatarEmail *string
	Admin         *bool
}

type OrganizationPatch struct {
	Name          *string
	DisplayName   *string
	GravatarEmail *string
	IconHash      *string
	Private       *bool
}

type RepositoryPatch struct {
	Name        *string
	Description *string
	IconHash    *string
	Private     *bool
	Deprecated  *bool
}

type RepositoryReleasePatch struct {
	UpdateText *string
}

type ApiKeyPatch struct {
	Description *string
	Scopes      *uint64
	ExpiresAt   *string // RFC3339; empty string clears the expiry
}

// internal/api/owners.go
package api

import (
	"context"

	"github.com/charted-dev/charted/internal/common"
	"github.com/charted-dev/charted/internal/repository"
)

// lookupOwner resolves a NameOrId against users then organizations, matching
// repository.ResolveOwner's documented precedence.
func lookupOwner(ctx context.Context, instance *Instance, nameOrID common.NameOrId) (repository.Owner, bool, error) {
	return repository.ResolveOwner(ctx, instance.Users, instance.Organizations, nameOrID)
}

func readIndexBlob(ctx context.Context, instance *Instance, ownerID uint64) ([]byte, bool, error) {
	return instance.Charts.GetIndex(ctx, ownerID)
}

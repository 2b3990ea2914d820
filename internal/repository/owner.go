// internal/repository/owner.go
package repository

import (
	"context"
	"fmt"

	"github.com/charted-dev/charted/internal/common"
)

// OwnerKind distinguishes which table a resolved owner id came from.
type OwnerKind int

const (
	OwnerUser OwnerKind = iota
	OwnerOrganization
)

// Owner is the resolved result of ResolveOwner.
type Owner struct {
	Kind OwnerKind
	ID   uint64
}

// ResolveOwner resolves a NameOrId path parameter against both the users
// and organizations namespaces, trying users first. Names are not
// guaranteed disjoint between the two tables, so the order is a documented
// resolution rule, not an invariant.
func ResolveOwner(ctx context.Context, users *Repository[User, UserPatch], orgs *Repository[Organization, OrganizationPatch], nameOrID common.NameOrId) (Owner, bool, error) {
	if user, found, err := users.GetBy(ctx, nameOrID); err != nil {
		return Owner{}, false, fmt.Errorf("resolve owner against users: %w", err)
	} else if found {
		return Owner{Kind: OwnerUser, ID: user.ID}, true, nil
	}

	if org, found, err := orgs.GetBy(ctx, nameOrID); err != nil {
		return Owner{}, false, fmt.Errorf("resolve owner against organizations: %w", err)
	} else if found {
		return Owner{Kind: OwnerOrganization, ID: org.ID}, true, nil
	}

	return Owner{}, false, nil
}

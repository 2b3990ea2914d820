// internal/charts/layout.go
package charts

import "fmt"

// Layout builds the blob-store-relative paths for the four namespaces under
// the store root that spec.md §4.7 defines.
type Layout struct{}

func (Layout) IndexPath(ownerID uint64) string {
	return fmt.Sprintf("metadata/%d/index.yaml", ownerID)
}

func (Layout) TarballPath(ownerID, repoID uint64, semver string) string {
	return fmt.Sprintf("repositories/%d/%d/tarballs/%s.tgz", ownerID, repoID, semver)
}

func (Layout) TarballDir(ownerID, repoID uint64) string {
	return fmt.Sprintf("repositories/%d/%d/tarballs", ownerID, repoID)
}

func (Layout) UserAvatarPath(userID uint64, hash, ext string) string {
	return fmt.Sprintf("avatars/users/%d/%s.%s", userID, hash, ext)
}

func (Layout) OrganizationAvatarPath(orgID uint64, hash, ext string) string {
	return fmt.Sprintf("avatars/organizations/%d/%s.%s", orgID, hash, ext)
}

func (Layout) RepositoryIconPath(repoID uint64, hash, ext string) string {
	return fmt.Sprintf("avatars/repositories/%d/%s.%s", repoID, hash, ext)
}

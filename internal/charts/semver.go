// internal/charts/semver.go
package charts

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/charted-dev/charted/internal/common"
	"github.com/charted-dev/charted/internal/storage"
)

// ResolvedVersion pairs a parsed SemVer with the original tarball blob name
// (build metadata doesn't affect precedence but must survive round-trip).
type ResolvedVersion struct {
	Version *semver.Version
	Blob    string // original "<semver>.tgz" identifier, without extension
}

// SortedVersions keeps the *.tgz file entries of blobs, discards entries that
// don't parse as SemVer 2, optionally discards pre-releases, and returns
// them sorted descending by SemVer precedence. Entries that fail to parse
// are skipped, not fatal, per spec.md §4.7 step 2.
func SortedVersions(blobs []storage.Blob, allowPrereleases bool) []ResolvedVersion {
	versions := make([]ResolvedVersion, 0, len(blobs))

	for _, b := range blobs {
		if b.Kind != storage.BlobFile || !strings.HasSuffix(b.Name, ".tgz") {
			continue
		}
		raw := strings.TrimSuffix(b.Name, ".tgz")

		v, err := semver.NewVersion(raw)
		if err != nil {
			continue
		}
		if !allowPrereleases && v.Prerelease() != "" {
			continue
		}

		versions = append(versions, ResolvedVersion{Version: v, Blob: raw})
	}

	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Version.GreaterThan(versions[j].Version)
	})

	return versions
}

// ResolveVersionRequest turns a requested version string ("latest",
// "current", or an explicit SemVer) into the concrete tarball identifier to
// read, given the owner/repository's sorted version list.
func ResolveVersionRequest(requested string, sorted []ResolvedVersion, allowPrereleases bool) (string, error) {
	if requested == "latest" || requested == "current" {
		if len(sorted) == 0 {
			return "", common.NewError(common.CodeEntityNotFound, "repository has no releases")
		}
		return sorted[0].Blob, nil
	}

	v, err := semver.NewVersion(requested)
	if err != nil {
		return "", common.NewError(common.CodeValidationFailed, "not a valid SemVer 2 version").
			WithDetail("version", requested)
	}
	if !allowPrereleases && v.Prerelease() != "" {
		return "", common.NewError(common.CodePrereleaseNotAllowed, "pre-release versions are not allowed here").
			WithDetail("version", requested)
	}

	return requested, nil
}

// internal/charts/semver_test.go
package charts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charted-dev/charted/internal/common"
	"github.com/charted-dev/charted/internal/storage"
)

func blob(name string) storage.Blob {
	return storage.Blob{Kind: storage.BlobFile, Name: name, Path: "repo/" + name}
}

func TestSortedVersions_SortsDescendingAndDropsGarbage(t *testing.T) {
	blobs := []storage.Blob{
		blob("1.0.0.tgz"),
		blob("2.1.0.tgz"),
		blob("not-a-version.tgz"),
		blob("1.5.0.tgz"),
		blob("index.yaml"),
	}

	sorted := SortedVersions(blobs, true)
	require.Len(t, sorted, 3)
	assert.Equal(t, "2.1.0", sorted[0].Blob)
	assert.Equal(t, "1.5.0", sorted[1].Blob)
	assert.Equal(t, "1.0.0", sorted[2].Blob)
}

func TestSortedVersions_DropsPrereleasesUnlessAllowed(t *testing.T) {
	blobs := []storage.Blob{
		blob("2.0.0.tgz"),
		blob("2.1.0-rc.1.tgz"),
	}

	assert.Len(t, SortedVersions(blobs, false), 1)
	assert.Len(t, SortedVersions(blobs, true), 2)
}

func TestResolveVersionRequest_LatestAndCurrent(t *testing.T) {
	sorted := SortedVersions([]storage.Blob{blob("1.0.0.tgz"), blob("2.0.0.tgz")}, true)

	v, err := ResolveVersionRequest("latest", sorted, true)
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", v)

	v, err = ResolveVersionRequest("current", sorted, true)
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", v)
}

func TestResolveVersionRequest_NoReleases(t *testing.T) {
	_, err := ResolveVersionRequest("latest", nil, true)
	require.Error(t, err)
	assert.Equal(t, common.CodeEntityNotFound, err.(*common.Error).Code)
}

func TestResolveVersionRequest_ExplicitVersion(t *testing.T) {
	v, err := ResolveVersionRequest("1.2.3", nil, true)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v)
}

func TestResolveVersionRequest_RejectsInvalidSemver(t *testing.T) {
	_, err := ResolveVersionRequest("not-a-version", nil, true)
	require.Error(t, err)
	assert.Equal(t, common.CodeValidationFailed, err.(*common.Error).Code)
}

func TestResolveVersionRequest_RejectsPrereleaseWhenDisallowed(t *testing.T) {
	_, err := ResolveVersionRequest("1.2.3-rc.1", nil, false)
	require.Error(t, err)
	assert.Equal(t, common.CodePrereleaseNotAllowed, err.(*common.Error).Code)
}

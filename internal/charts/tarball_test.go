// internal/charts/tarball_test.go
package charts

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charted-dev/charted/internal/common"
)

type tarEntry struct {
	name string
	body string
	link string // when set, written as a symlink header instead of a regular file
}

func buildTarball(t *testing.T, entries []tarEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, e := range entries {
		if e.link != "" {
			hdr := &tar.Header{Name: e.name, Typeflag: tar.TypeSymlink, Linkname: e.link}
			require.NoError(t, tw.WriteHeader(hdr))
			continue
		}
		hdr := &tar.Header{Name: e.name, Typeflag: tar.TypeReg, Size: int64(len(e.body)), Mode: 0644}
		require.NoError(t, tw.WriteHeader(hdr))
		_, err := tw.Write([]byte(e.body))
		require.NoError(t, err)
	}

	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func validChartEntries() []tarEntry {
	return []tarEntry{
		{name: "demo/Chart.yaml", body: "apiVersion: v2\nname: demo\nversion: 1.0.0\n"},
		{name: "demo/values.yaml", body: "replicas: 1\n"},
		{name: "demo/templates/deployment.yaml", body: "kind: Deployment\n"},
		{name: "demo/charts/sub-1.0.0.tgz", body: "nested"},
	}
}

func TestValidateContentType(t *testing.T) {
	assert.NoError(t, ValidateContentType("application/gzip"))
	assert.NoError(t, ValidateContentType("application/tar+gzip; charset=binary"))

	err := ValidateContentType("")
	require.Error(t, err)
	assert.Equal(t, common.CodeMissingContentType, err.(*common.Error).Code)

	err = ValidateContentType("application/zip")
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidContentType, err.(*common.Error).Code)
}

func TestValidateArchive_Accepts(t *testing.T) {
	data := buildTarball(t, validChartEntries())

	archive, err := ValidateArchive(data)
	require.NoError(t, err)
	assert.Equal(t, "demo", archive.ChartRoot)
	assert.Contains(t, string(archive.ChartYAML), "name: demo")
	assert.Len(t, archive.Entries, len(validChartEntries()))
}

func TestValidateArchive_RejectsMissingChartYAML(t *testing.T) {
	data := buildTarball(t, []tarEntry{
		{name: "demo/values.yaml", body: "replicas: 1\n"},
	})

	_, err := ValidateArchive(data)
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidContentType, err.(*common.Error).Code)
}

func TestValidateArchive_RejectsDisallowedEntry(t *testing.T) {
	data := buildTarball(t, []tarEntry{
		{name: "demo/Chart.yaml", body: "name: demo\n"},
		{name: "demo/scripts/install.sh", body: "#!/bin/sh\n"},
	})

	_, err := ValidateArchive(data)
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidContentType, err.(*common.Error).Code)
}

func TestValidateArchive_RejectsSymlinks(t *testing.T) {
	data := buildTarball(t, []tarEntry{
		{name: "demo/Chart.yaml", body: "name: demo\n"},
		{name: "demo/templates/evil.yaml", link: "/etc/passwd"},
	})

	_, err := ValidateArchive(data)
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidContentType, err.(*common.Error).Code)
}

func TestValidateArchive_RejectsPathTraversal(t *testing.T) {
	data := buildTarball(t, []tarEntry{
		{name: "demo/Chart.yaml", body: "name: demo\n"},
		{name: "../../etc/passwd", body: "oops"},
	})

	_, err := ValidateArchive(data)
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidContentType, err.(*common.Error).Code)
}

func TestValidateArchive_RejectsMultipleTopLevelDirs(t *testing.T) {
	data := buildTarball(t, []tarEntry{
		{name: "demo/Chart.yaml", body: "name: demo\n"},
		{name: "other/Chart.yaml", body: "name: other\n"},
	})

	_, err := ValidateArchive(data)
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidContentType, err.(*common.Error).Code)
}

func TestValidateArchive_RejectsGarbage(t *testing.T) {
	_, err := ValidateArchive([]byte("not a gzip stream"))
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidContentType, err.(*common.Error).Code)
}

func TestExtractChartYAML(t *testing.T) {
	data := buildTarball(t, validChartEntries())

	got, err := ExtractChartYAML(data)
	require.NoError(t, err)
	assert.Contains(t, string(got), "name: demo")
}

func TestExtractChartYAML_MissingIsNotFound(t *testing.T) {
	data := buildTarball(t, []tarEntry{{name: "demo/values.yaml", body: "x: 1\n"}})

	_, err := ExtractChartYAML(data)
	require.Error(t, err)
	assert.Equal(t, common.CodeEntityNotFound, err.(*common.Error).Code)
}

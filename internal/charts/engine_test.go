// internal/charts/engine_test.go
package charts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charted-dev/charted/internal/storage"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	driver, err := storage.NewLocalDriver(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return NewEngine(driver, zap.NewNop())
}

func TestEngine_UploadRelease_WritesTarballAndIndex(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	data := buildTarball(t, []tarEntry{
		{name: "demo/Chart.yaml", body: "apiVersion: v2\nname: demo\nversion: 1.0.0\n"},
		{name: "demo/values.yaml", body: "replicas: 1\n"},
	})

	version, err := e.UploadRelease(ctx, 7, 3, data)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", version)

	got, err := e.driver.Open(ctx, e.layout.TarballPath(7, 3, "1.0.0"))
	require.NoError(t, err)
	assert.Equal(t, data, got)

	index, err := e.driver.Open(ctx, e.layout.IndexPath(7))
	require.NoError(t, err)
	assert.Contains(t, string(index), "demo")
	assert.Contains(t, string(index), "1.0.0")
}

func TestEngine_UploadRelease_RejectsInvalidArchive(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	_, err := e.UploadRelease(ctx, 7, 3, []byte("garbage"))
	assert.Error(t, err)

	exists, err := e.driver.Exists(ctx, e.layout.IndexPath(7))
	require.NoError(t, err)
	assert.False(t, exists, "a rejected upload must not create an index")
}

func TestEngine_UploadRelease_RejectsMissingVersion(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	data := buildTarball(t, []tarEntry{
		{name: "demo/Chart.yaml", body: "apiVersion: v2\nname: demo\n"},
	})

	_, err := e.UploadRelease(ctx, 7, 3, data)
	assert.Error(t, err)
}

func TestEngine_GetTarball_ResolvesLatest(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	for _, v := range []string{"1.0.0", "2.0.0"} {
		data := buildTarball(t, []tarEntry{
			{name: "demo/Chart.yaml", body: "apiVersion: v2\nname: demo\nversion: " + v + "\n"},
		})
		_, err := e.UploadRelease(ctx, 7, 3, data)
		require.NoError(t, err)
	}

	got, err := e.GetTarball(ctx, 7, 3, "latest", true)
	require.NoError(t, err)

	chartYAML, err := ExtractChartYAML(got)
	require.NoError(t, err)
	assert.Contains(t, string(chartYAML), "version: 2.0.0")
}

func TestEngine_DeleteRelease_RemovesTarballAndRegeneratesIndex(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	data := buildTarball(t, []tarEntry{
		{name: "demo/Chart.yaml", body: "apiVersion: v2\nname: demo\nversion: 1.0.0\n"},
	})
	_, err := e.UploadRelease(ctx, 7, 3, data)
	require.NoError(t, err)

	require.NoError(t, e.DeleteRelease(ctx, 7, 3, "1.0.0"))

	exists, err := e.driver.Exists(ctx, e.layout.TarballPath(7, 3, "1.0.0"))
	require.NoError(t, err)
	assert.False(t, exists)

	index, err := e.driver.Open(ctx, e.layout.IndexPath(7))
	require.NoError(t, err)
	assert.NotContains(t, string(index), "1.0.0")
}

// internal/charts/engine.go
package charts

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"helm.sh/helm/v3/pkg/chart"

	"github.com/charted-dev/charted/internal/common"
	"github.com/charted-dev/charted/internal/storage"
)

// Engine is the chart artifact engine: tarball validation, per-owner
// index.yaml regeneration, and release resolution, all against a
// storage.Driver blob store. Index regeneration is serialized per owner
// (spec.md §4.7); Engine owns the lock table.
type Engine struct {
	driver storage.Driver
	logger *zap.Logger
	layout Layout

	mu         sync.Mutex
	ownerLocks map[uint64]*sync.Mutex
}

// NewEngine builds an Engine over driver.
func NewEngine(driver storage.Driver, logger *zap.Logger) *Engine {
	return &Engine{
		driver:     driver,
		logger:     logger,
		ownerLocks: make(map[uint64]*sync.Mutex),
	}
}

func (e *Engine) lockOwner(ownerID uint64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.ownerLocks[ownerID]
	if !ok {
		lock = &sync.Mutex{}
		e.ownerLocks[ownerID] = lock
	}
	return lock
}

// UploadRelease validates data as a Helm chart tarball, writes it under the
// owner/repository's tarballs namespace, and regenerates the owner's
// index.yaml. If the index rewrite fails after a successful blob write,
// the blob is removed before returning — an upload either fully succeeds
// or leaves no trace, per spec.md §4.7's atomicity requirement.
func (e *Engine) UploadRelease(ctx context.Context, ownerID, repoID uint64, data []byte) (version string, err error) {
	archive, err := ValidateArchive(data)
	if err != nil {
		return "", err
	}

	var meta chart.Metadata
	if err := yaml.Unmarshal(archive.ChartYAML, &meta); err != nil {
		return "", common.NewError(common.CodeInvalidContentType, "Chart.yaml did not parse").
			WithDetail("reason", err.Error())
	}
	if meta.Version == "" {
		return "", common.NewError(common.CodeInvalidContentType, "Chart.yaml is missing a version")
	}

	lock := e.lockOwner(ownerID)
	lock.Lock()
	defer lock.Unlock()

	tarballPath := e.layout.TarballPath(ownerID, repoID, meta.Version)
	if err := e.driver.Upload(ctx, tarballPath, data, "application/gzip"); err != nil {
		return "", fmt.Errorf("upload tarball: %w", err)
	}

	if err := e.regenerateIndexLocked(ctx, ownerID); err != nil {
		if derr := e.driver.Delete(ctx, tarballPath); derr != nil {
			e.logger.Error("failed to roll back tarball after index rewrite failure",
				zap.String("path", tarballPath), zap.Error(derr))
		}
		return "", fmt.Errorf("regenerate index after upload: %w", err)
	}

	return meta.Version, nil
}

// DeleteRelease removes a release's tarball and regenerates the index.
func (e *Engine) DeleteRelease(ctx context.Context, ownerID, repoID uint64, version string) error {
	lock := e.lockOwner(ownerID)
	lock.Lock()
	defer lock.Unlock()

	tarballPath := e.layout.TarballPath(ownerID, repoID, version)
	if err := e.driver.Delete(ctx, tarballPath); err != nil {
		return fmt.Errorf("delete tarball: %w", err)
	}

	if err := e.regenerateIndexLocked(ctx, ownerID); err != nil {
		return fmt.Errorf("regenerate index after delete: %w", err)
	}
	return nil
}

// RegenerateIndex rewrites the owner's index.yaml from whatever tarballs
// currently exist in the blob store. Exposed for lazy/deferred regeneration
// callers (spec.md §4.7 allows the regenerate step to be lazy).
func (e *Engine) RegenerateIndex(ctx context.Context, ownerID uint64) error {
	lock := e.lockOwner(ownerID)
	lock.Lock()
	defer lock.Unlock()
	return e.regenerateIndexLocked(ctx, ownerID)
}

func (e *Engine) regenerateIndexLocked(ctx context.Context, ownerID uint64) error {
	repoDirs, err := e.driver.List(ctx, fmt.Sprintf("repositories/%d", ownerID), storage.ListFilter{})
	if err != nil {
		return fmt.Errorf("list owner repositories: %w", err)
	}

	var entries []IndexEntry
	for _, repoDir := range repoDirs {
		if repoDir.Kind != storage.BlobDirectory {
			continue
		}

		var repoID uint64
		if _, err := fmt.Sscanf(repoDir.Name, "%d", &repoID); err != nil {
			continue
		}

		tarballs, err := e.driver.List(ctx, e.layout.TarballDir(ownerID, repoID), storage.ListFilter{Suffix: ".tgz", FilesOnly: true})
		if err != nil {
			return fmt.Errorf("list tarballs for repository %d: %w", repoID, err)
		}

		for _, blob := range tarballs {
			data, err := e.driver.Open(ctx, blob.Path)
			if err != nil {
				return fmt.Errorf("open tarball %s: %w", blob.Path, err)
			}
			if data == nil {
				continue
			}

			chartYAML, err := ExtractChartYAML(data)
			if err != nil {
				e.logger.Warn("skipping tarball with unreadable Chart.yaml", zap.String("path", blob.Path), zap.Error(err))
				continue
			}

			var meta chart.Metadata
			if err := yaml.Unmarshal(chartYAML, &meta); err != nil {
				e.logger.Warn("skipping tarball with unparseable Chart.yaml", zap.String("path", blob.Path), zap.Error(err))
				continue
			}

			entries = append(entries, IndexEntry{
				RepoID:   repoID,
				Version:  strings.TrimSuffix(blob.Name, ".tgz"),
				Metadata: &meta,
			})
		}
	}

	idx, err := BuildIndex(ownerID, entries)
	if err != nil {
		return err
	}

	out, err := MarshalIndex(idx)
	if err != nil {
		return err
	}

	if err := e.driver.Upload(ctx, e.layout.IndexPath(ownerID), out, "text/yaml; charset=utf-8"); err != nil {
		return fmt.Errorf("write index.yaml: %w", err)
	}
	return nil
}

// GetIndex returns the owner's current index.yaml bytes, or ok=false if none
// has been generated yet.
func (e *Engine) GetIndex(ctx context.Context, ownerID uint64) (data []byte, ok bool, err error) {
	data, err = e.driver.Open(ctx, e.layout.IndexPath(ownerID))
	if err != nil {
		return nil, false, fmt.Errorf("open index: %w", err)
	}
	return data, data != nil, nil
}

// GetTarball resolves a version request ("latest", "current", or an
// explicit SemVer) against the repository's stored tarballs and returns its
// bytes.
func (e *Engine) GetTarball(ctx context.Context, ownerID, repoID uint64, requested string, allowPrereleases bool) ([]byte, error) {
	blobs, err := e.driver.List(ctx, e.layout.TarballDir(ownerID, repoID), storage.ListFilter{Suffix: ".tgz", FilesOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list tarballs: %w", err)
	}

	sorted := SortedVersions(blobs, allowPrereleases)
	version, err := ResolveVersionRequest(requested, sorted, allowPrereleases)
	if err != nil {
		return nil, err
	}

	data, err := e.driver.Open(ctx, e.layout.TarballPath(ownerID, repoID, version))
	if err != nil {
		return nil, fmt.Errorf("open tarball: %w", err)
	}
	if data == nil {
		return nil, common.NewError(common.CodeEntityNotFound, "release not found").
			WithDetail("version", version)
	}
	return data, nil
}

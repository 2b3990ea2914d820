// internal/charts/index.go
package charts

import (
	"fmt"

	"gopkg.in/yaml.v3"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/repo"
)

// IndexEntry is one release to fold into an owner's index.yaml.
type IndexEntry struct {
	RepoID   uint64
	Version  string // the ".tgz"-stripped identifier, e.g. "1.2.3+build"
	Metadata *chart.Metadata
	Digest   string
}

// BuildIndex assembles a Helm-format repo.IndexFile from every release
// owned by ownerID, grounded on helm.sh/helm/v3/pkg/repo's IndexFile/Add
// shape (spec.md §4.7's "entries: {<chartName>: [ChartVersion]}" document).
func BuildIndex(ownerID uint64, entries []IndexEntry) (*repo.IndexFile, error) {
	idx := repo.NewIndexFile()

	for _, e := range entries {
		if e.Metadata == nil {
			return nil, fmt.Errorf("owner %d release %s: missing Chart.yaml metadata", ownerID, e.Version)
		}

		filename := Layout{}.TarballPath(ownerID, e.RepoID, e.Version)
		idx.Add(e.Metadata, filename, "", e.Digest)
	}

	idx.SortEntries()
	return idx, nil
}

// MarshalIndex renders idx as the YAML document written to
// metadata/<ownerId>/index.yaml.
func MarshalIndex(idx *repo.IndexFile) ([]byte, error) {
	out, err := yaml.Marshal(idx)
	if err != nil {
		return nil, fmt.Errorf("marshal index.yaml: %w", err)
	}
	return out, nil
}

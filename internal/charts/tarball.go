// internal/charts/tarball.go
package charts

import (
	"archive/tar"
	"bytes"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/charted-dev/charted/internal/common"
)

// allowedContentTypes are the only multipart content types a tarball
// upload part may declare.
var allowedContentTypes = map[string]bool{
	"application/gzip":    true,
	"application/tar+gzip": true,
}

var allowedExactNames = map[string]bool{
	"Chart.lock":         true,
	"Chart.yaml":         true,
	"values.yaml":        true,
	"values.schema.json": true,
	".helmignore":        true,
	"README.md":          true,
}

var templatesPattern = regexp.MustCompile(`\.(txt|tpl|yaml|yml)$`)
var chartsPattern = regexp.MustCompile(`\.(tgz|tar\.gz)$`)

// ValidateContentType enforces MissingContentType / InvalidContentType.
func ValidateContentType(contentType string) error {
	if contentType == "" {
		return common.NewError(common.CodeMissingContentType, "multipart part has no content type")
	}
	// Strip any parameters (e.g. "application/gzip; charset=binary").
	base := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	if !allowedContentTypes[base] {
		return common.NewError(common.CodeInvalidContentType, "unsupported tarball content type").
			WithDetail("content_type", contentType)
	}
	return nil
}

// ExtractedEntry is one accepted file out of a validated archive.
type ExtractedEntry struct {
	// Path relative to the chart root directory (without the leading
	// "<chartname>/" component).
	Path string
	Data []byte
}

// ExtractedArchive is the result of a successful ValidateArchive call.
type ExtractedArchive struct {
	ChartRoot string // the archive's single top-level directory
	Entries   []ExtractedEntry
	ChartYAML []byte
}

// ValidateArchive decodes data as a (possibly multi-member) gzip stream
// wrapping a tar archive, rejecting anything that doesn't match the
// canonical Helm chart layout spec.md §4.7 describes.
func ValidateArchive(data []byte) (*ExtractedArchive, error) {
	gz, err := openMultistreamGzip(bytes.NewReader(data))
	if err != nil {
		return nil, common.NewError(common.CodeInvalidContentType, "not a valid gzip stream")
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	result := &ExtractedArchive{}

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, common.NewError(common.CodeInvalidContentType, "corrupt tar archive").
				WithDetail("reason", err.Error())
		}

		if hdr.Typeflag == tar.TypeSymlink || hdr.Typeflag == tar.TypeLink {
			return nil, common.NewError(common.CodeInvalidContentType, "symlinks are not allowed in chart archives")
		}
		if path.IsAbs(hdr.Name) || strings.Contains(hdr.Name, "..") {
			return nil, common.NewError(common.CodeInvalidContentType, "archive path escapes the chart root").
				WithDetail("name", hdr.Name)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		clean := path.Clean(hdr.Name)
		root, rel, ok := splitChartRoot(clean)
		if !ok {
			return nil, common.NewError(common.CodeInvalidContentType, "entry has no chart root directory").
				WithDetail("name", hdr.Name)
		}
		if result.ChartRoot == "" {
			result.ChartRoot = root
		} else if result.ChartRoot != root {
			return nil, common.NewError(common.CodeInvalidContentType, "archive has more than one top-level directory")
		}

		if !entryAllowed(rel) {
			return nil, common.NewError(common.CodeInvalidContentType, "entry is not part of the canonical chart layout").
				WithDetail("name", hdr.Name)
		}

		buf, err := io.ReadAll(tr)
		if err != nil {
			return nil, common.NewError(common.CodeInvalidContentType, "failed reading archive entry").
				WithDetail("name", hdr.Name)
		}

		result.Entries = append(result.Entries, ExtractedEntry{Path: rel, Data: buf})
		if rel == "Chart.yaml" {
			result.ChartYAML = buf
		}
	}

	if result.ChartYAML == nil {
		return nil, common.NewError(common.CodeInvalidContentType, "archive is missing a top-level Chart.yaml")
	}

	return result, nil
}

func splitChartRoot(clean string) (root, rel string, ok bool) {
	idx := strings.IndexByte(clean, '/')
	if idx < 0 {
		return "", "", false
	}
	return clean[:idx], clean[idx+1:], true
}

// ExtractChartYAML reads just the Chart.yaml member out of an
// already-validated, already-stored tarball — used when regenerating an
// owner's index, where the archive was accepted by ValidateArchive at
// upload time and does not need re-validating entry by entry.
func ExtractChartYAML(data []byte) ([]byte, error) {
	gz, err := openMultistreamGzip(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		clean := path.Clean(hdr.Name)
		_, rel, ok := splitChartRoot(clean)
		if !ok || rel != "Chart.yaml" {
			continue
		}
		return io.ReadAll(tr)
	}

	return nil, common.NewError(common.CodeEntityNotFound, "stored tarball is missing Chart.yaml")
}

func entryAllowed(rel string) bool {
	if allowedExactNames[rel] {
		return true
	}
	if strings.HasPrefix(rel, "templates/") && templatesPattern.MatchString(rel) {
		return true
	}
	if strings.HasPrefix(rel, "charts/") && chartsPattern.MatchString(rel) {
		return true
	}
	return false
}

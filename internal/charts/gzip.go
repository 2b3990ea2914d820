// internal/charts/gzip.go
package charts

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// openMultistreamGzip wraps r in a gzip.Reader that accepts concatenated
// gzip members, the way the original Rust implementation's MultiGzDecoder
// does. gzip.Reader already treats a stream as multistream by default
// (Multistream(true) is the zero-value behavior); this helper just makes
// that explicit at the one call site that needs it, rather than relying
// on readers elsewhere assuming the default. klauspost/compress's gzip
// package is a drop-in for the stdlib one with a materially faster
// decoder, which is what every tarball upload and index rebuild runs
// through.
func openMultistreamGzip(r io.Reader) (*gzip.Reader, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	gz.Multistream(true)
	return gz, nil
}

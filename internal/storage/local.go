// internal/storage/local.go
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// LocalDriver implements Driver over the local POSIX filesystem.
type LocalDriver struct {
	root   string
	logger *zap.Logger
}

// NewLocalDriver builds a LocalDriver rooted at root. root is created if it
// doesn't already exist.
func NewLocalDriver(root string, logger *zap.Logger) (*LocalDriver, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	return &LocalDriver{root: root, logger: logger}, nil
}

func (d *LocalDriver) resolve(path string) string {
	cleaned := filepath.Clean("/" + path)
	return filepath.Join(d.root, cleaned)
}

// Open reads an object, returning (nil, nil) if it doesn't exist.
func (d *LocalDriver) Open(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(d.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return data, nil
}

// Upload writes or overwrites an object, creating parent directories.
func (d *LocalDriver) Upload(_ context.Context, path string, data []byte, _ string) error {
	full := d.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return fmt.Errorf("create parent directory for %s: %w", path, err)
	}

	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			d.logger.Error("failed to close file", zap.String("path", full), zap.Error(cerr))
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Delete removes an object; a missing object is not an error.
func (d *LocalDriver) Delete(_ context.Context, path string) error {
	if err := os.Remove(d.resolve(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// Exists reports whether an object is present.
func (d *LocalDriver) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(d.resolve(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

// List enumerates blobs under prefix.
func (d *LocalDriver) List(_ context.Context, prefix string, filter ListFilter) ([]Blob, error) {
	full := d.resolve(prefix)
	entries, err := os.ReadDir(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}

	blobs := make([]Blob, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			if filter.FilesOnly {
				continue
			}
			blobs = append(blobs, Blob{
				Kind: BlobDirectory,
				Name: e.Name(),
				Path: strings.TrimSuffix(prefix, "/") + "/" + e.Name(),
			})
			continue
		}

		if filter.Suffix != "" && !strings.HasSuffix(e.Name(), filter.Suffix) {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		blobs = append(blobs, Blob{
			Kind: BlobFile,
			Name: e.Name(),
			Path: strings.TrimSuffix(prefix, "/") + "/" + e.Name(),
			Size: info.Size(),
		})
	}

	sort.Slice(blobs, func(i, j int) bool { return blobs[i].Name < blobs[j].Name })
	return blobs, nil
}

// internal/storage/driver.go
package storage

import "context"

// BlobKind distinguishes a regular file from a directory entry returned by
// List.
type BlobKind int

const (
	BlobFile BlobKind = iota
	BlobDirectory
)

// Blob is one entry returned from a List call.
type Blob struct {
	Kind BlobKind
	Name string // basename, not a full path
	Path string // path relative to the store root
	Size int64
}

// ListFilter narrows List results; a zero value matches everything.
type ListFilter struct {
	// Suffix, if set, only matches blobs whose Name ends with it.
	Suffix string
	// FilesOnly excludes directory entries from the result.
	FilesOnly bool
}

// Driver is the uniform facade every blob store backend implements: open,
// upload, delete, exists, list. Paths are POSIX-style and relative to a
// store-configured root.
type Driver interface {
	// Open reads an object. A nil slice with a nil error means the object
	// does not exist.
	Open(ctx context.Context, path string) ([]byte, error)
	// Upload writes or overwrites an object, creating parent directories as
	// needed on the filesystem backend.
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, path string) error
	// Exists reports whether an object is present.
	Exists(ctx context.Context, path string) (bool, error)
	// List enumerates blobs under prefix.
	List(ctx context.Context, prefix string, filter ListFilter) ([]Blob, error)
}

// ResolveContentType sniffs the content type of data the way S3Driver.Upload
// does when no explicit content type is given. LocalDriver.Upload records no
// content type.
func ResolveContentType(name string, data []byte) string {
	return resolveContentType(name, data)
}

// internal/cache/worker.go
package cache

import (
	"context"
	"time"

	"github.com/charted-dev/charted/internal/common"
)

// DefaultTTL is used when a config does not specify one.
const DefaultTTL = 15 * time.Minute

// DefaultMaxObjectSize is the default ceiling on a single cached value.
const DefaultMaxObjectSize = 1 << 20

// Worker is the cache-worker contract: get/put/delete/exists over opaque,
// pre-serialized byte values, scoped by a TTL applied at write time.
type Worker interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ObjectTooLarge builds the standard error Put returns when a value exceeds
// the configured max_object_size.
func ObjectTooLarge(size, max int) *common.Error {
	return common.NewError(common.CodeObjectTooLarge, "object exceeds max_object_size").
		WithDetail("size", size).
		WithDetail("max_object_size", max)
}

// Key builders for the hierarchical, ':'-separated keyspace the spec names.
func UserKey(id uint64) string               { return keyOf("users", id) }
func RepositoryKey(id uint64) string         { return keyOf("repositories", id) }
func OrganizationKey(id uint64) string       { return keyOf("organizations", id) }
func RepositoryReleaseKey(id uint64) string  { return keyOf("repositories:releases", id) }

func keyOf(prefix string, id uint64) string {
	return prefix + ":" + uitoa(id)
}

func uitoa(id uint64) string {
	if id == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for id > 0 {
		i--
		buf[i] = byte('0' + id%10)
		id /= 10
	}
	return string(buf[i:])
}

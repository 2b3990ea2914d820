// internal/repository/repository.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/charted-dev/charted/internal/cache"
	"github.com/charted-dev/charted/internal/common"
)

// Entity is any record a Repository manages.
type Entity interface {
	EntityID() uint64
}

// Mapper binds a concrete entity type to its table and SQL shape. One
// Mapper implementation exists per entity kind (users.go, organizations.go,
// repositories.go, releases.go, apikeys.go); Repository is generic over it.
type Mapper[T Entity, P any] interface {
	// Table is the relational table name.
	Table() string
	// NameColumn is the column get_by queries by name, or "" if the entity
	// has no unique human name (RepositoryRelease).
	NameColumn() string
	// SelectColumns lists columns in the order ScanRow expects them.
	SelectColumns() []string
	// ScanRow reads one row into T.
	ScanRow(row *sql.Row) (T, error)
	ScanRows(rows *sql.Rows) (T, error)
	// InsertSkeleton inserts a fully-formed T (id already assigned).
	InsertSkeleton(ctx context.Context, tx *sql.Tx, entity T) error
	// ApplyPatch updates columns named by payload inside tx; returns false
	// if id does not exist.
	ApplyPatch(ctx context.Context, tx *sql.Tx, id uint64, payload P) (bool, error)
	// ConflictFields lists, in priority order, the unique columns a
	// duplicate insert of entity could collide on - used to translate a
	// Postgres unique-violation into a named common.CodeEntityAlreadyExists
	// detail instead of an opaque 500.
	ConflictFields(entity T) []ConflictField
}

// ConflictField names one column/value pair a unique constraint covers.
type ConflictField struct {
	Column string
	Value  any
}

// duplicateFieldError inspects err for a Postgres unique-violation
// (SQLSTATE 23505) and, if found, maps its constraint name to the first
// matching entry in fields, returning a common.CodeEntityAlreadyExists
// error naming the conflicting column. Returns nil if err is not a
// unique-violation, so callers can fall through to their generic wrap.
func duplicateFieldError(err error, fields []ConflictField) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}

	for _, f := range fields {
		if strings.Contains(pqErr.Constraint, f.Column) {
			return common.NewError(common.CodeEntityAlreadyExists, fmt.Sprintf("%s is already taken", f.Column)).
				WithDetail(f.Column, f.Value)
		}
	}
	return common.NewError(common.CodeEntityAlreadyExists, "entity already exists")
}

// Repository is the generic cached CRUD + cursor-pagination contract spec.md
// §4.6 describes, parameterized over one entity/mapper pair.
type Repository[T Entity, P any] struct {
	db        *sql.DB
	cache     cache.Worker
	keyPrefix string
	mapper    Mapper[T, P]
	logger    *zap.Logger
}

// New builds a Repository. keyPrefix is the cache key namespace, e.g.
// "users", matching the hierarchical keys cache.UserKey and friends build.
func New[T Entity, P any](db *sql.DB, worker cache.Worker, keyPrefix string, mapper Mapper[T, P], logger *zap.Logger) *Repository[T, P] {
	return &Repository[T, P]{db: db, cache: worker, keyPrefix: keyPrefix, mapper: mapper, logger: logger}
}

func (r *Repository[T, P]) cacheKey(id uint64) string {
	return fmt.Sprintf("%s:%d", r.keyPrefix, id)
}

// Get is a cache-through read by id.
func (r *Repository[T, P]) Get(ctx context.Context, id uint64) (T, bool, error) {
	var zero T

	key := r.cacheKey(id)
	if raw, ok, err := r.cache.Get(ctx, key); err != nil {
		r.logger.Warn("cache get failed, falling back to store", zap.String("key", key), zap.Error(err))
	} else if ok {
		entity, derr := r.decode(raw)
		if derr == nil {
			return entity, true, nil
		}
		r.logger.Warn("cache decode failed, falling back to store", zap.String("key", key), zap.Error(derr))
	}

	entity, found, err := r.queryByID(ctx, id)
	if err != nil {
		return zero, false, err
	}
	if !found {
		return zero, false, nil
	}

	if raw, err := r.encode(entity); err == nil {
		if err := r.cache.Put(ctx, key, raw, 0); err != nil {
			r.logger.Warn("cache put failed", zap.String("key", key), zap.Error(err))
		}
	}

	return entity, true, nil
}

func (r *Repository[T, P]) queryByID(ctx context.Context, id uint64) (T, bool, error) {
	var zero T
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", columnList(r.mapper.SelectColumns()), r.mapper.Table())
	row := r.db.QueryRowContext(ctx, query, id)
	entity, err := r.mapper.ScanRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("query %s by id: %w", r.mapper.Table(), err)
	}
	return entity, true, nil
}

// GetBy resolves by NameOrId: ids delegate to Get (cache path); names bypass
// the cache entirely, since it is keyed by id and no name→id mapping is
// maintained.
func (r *Repository[T, P]) GetBy(ctx context.Context, nameOrID common.NameOrId) (T, bool, error) {
	var zero T

	if nameOrID.IsID() {
		return r.Get(ctx, nameOrID.ID())
	}

	if r.mapper.NameColumn() == "" {
		return zero, false, fmt.Errorf("%s has no name column to resolve by", r.mapper.Table())
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		columnList(r.mapper.SelectColumns()), r.mapper.Table(), r.mapper.NameColumn())
	row := r.db.QueryRowContext(ctx, query, string(nameOrID.Name()))
	entity, err := r.mapper.ScanRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("query %s by name: %w", r.mapper.Table(), err)
	}
	return entity, true, nil
}

// Create inserts a fully-formed skeleton. The cache is not pre-populated.
func (r *Repository[T, P]) Create(ctx context.Context, skeleton T) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create %s: %w", r.mapper.Table(), err)
	}

	if err := r.mapper.InsertSkeleton(ctx, tx, skeleton); err != nil {
		_ = tx.Rollback()
		if dup := duplicateFieldError(err, r.mapper.ConflictFields(skeleton)); dup != nil {
			return dup
		}
		return fmt.Errorf("insert %s: %w", r.mapper.Table(), err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create %s: %w", r.mapper.Table(), err)
	}
	return nil
}

// Patch runs the update transaction and evicts the cache entry for id
// before returning, on successful commit only.
func (r *Repository[T, P]) Patch(ctx context.Context, id uint64, payload P) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin patch %s: %w", r.mapper.Table(), err)
	}

	found, err := r.mapper.ApplyPatch(ctx, tx, id, payload)
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("patch %s %d: %w", r.mapper.Table(), id, err)
	}
	if !found {
		_ = tx.Rollback()
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit patch %s %d: %w", r.mapper.Table(), id, err)
	}

	if err := r.cache.Delete(ctx, r.cacheKey(id)); err != nil {
		r.logger.Warn("cache evict after patch failed", zap.Uint64("id", id), zap.Error(err))
	}

	return true, nil
}

// Delete evicts the cache entry, then deletes the row. Cascades are the
// schema's responsibility.
func (r *Repository[T, P]) Delete(ctx context.Context, id uint64) error {
	if err := r.cache.Delete(ctx, r.cacheKey(id)); err != nil {
		r.logger.Warn("cache evict before delete failed", zap.Uint64("id", id), zap.Error(err))
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.mapper.Table())
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete %s %d: %w", r.mapper.Table(), id, err)
	}
	return nil
}

// Exists is a quick check; a cache hit on Get also satisfies it.
func (r *Repository[T, P]) Exists(ctx context.Context, id uint64) (bool, error) {
	if _, ok, err := r.cache.Get(ctx, r.cacheKey(id)); err == nil && ok {
		return true, nil
	}

	query := fmt.Sprintf("SELECT 1 FROM %s WHERE id = $1", r.mapper.Table())
	var one int
	err := r.db.QueryRowContext(ctx, query, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists %s %d: %w", r.mapper.Table(), id, err)
	}
	return true, nil
}

// ExistsBy resolves a NameOrId and checks existence.
func (r *Repository[T, P]) ExistsBy(ctx context.Context, nameOrID common.NameOrId) (bool, error) {
	if nameOrID.IsID() {
		return r.Exists(ctx, nameOrID.ID())
	}
	_, found, err := r.GetBy(ctx, nameOrID)
	return found, err
}

func (r *Repository[T, P]) encode(entity T) ([]byte, error) {
	return json.Marshal(entity)
}

func (r *Repository[T, P]) decode(raw []byte) (T, error) {
	var entity T
	err := json.Unmarshal(raw, &entity)
	return entity, err
}

func columnList(cols []string) string {
	out := cols[0]
	for _, c := range cols[1:] {
		out += ", " + c
	}
	return out
}

// clampPerPage enforces the implementation pagination ceiling.
const maxPerPage = 100

func clampPerPage(perPage int) int {
	if perPage <= 0 {
		return 20
	}
	if perPage > maxPerPage {
		return maxPerPage
	}
	return perPage
}

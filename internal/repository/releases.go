// internal/repository/releases.go
package repository

import (
	"context"
	"database/sql"
	"time"
)

// RepositoryReleaseMapper implements Mapper[RepositoryRelease, RepositoryReleasePatch].
// Releases have no unique human name; NameColumn is empty, so GetBy/ExistsBy
// only ever resolve them by numeric id.
type RepositoryReleaseMapper struct{}

func (RepositoryReleaseMapper) Table() string      { return "repository_releases" }
func (RepositoryReleaseMapper) NameColumn() string { return "" }

func (RepositoryReleaseMapper) SelectColumns() []string {
	return []string{
		"id", "repository_id", "tag", "update_text", "prerelease",
		"created_at", "updated_at",
	}
}

func scanRelease(s userScanner) (RepositoryRelease, error) {
	var r RepositoryRelease
	err := s.Scan(&r.ID, &r.RepositoryID, &r.Tag, &r.UpdateText, &r.Prerelease, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (RepositoryReleaseMapper) ScanRow(row *sql.Row) (RepositoryRelease, error) { return scanRelease(row) }
func (RepositoryReleaseMapper) ScanRows(rows *sql.Rows) (RepositoryRelease, error) {
	return scanRelease(rows)
}

func (RepositoryReleaseMapper) ConflictFields(r RepositoryRelease) []ConflictField {
	return []ConflictField{{Column: "tag", Value: r.Tag}}
}

func (RepositoryReleaseMapper) InsertSkeleton(ctx context.Context, tx *sql.Tx, r RepositoryRelease) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO repository_releases (id, repository_id, tag, update_text, prerelease, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.RepositoryID, r.Tag, r.UpdateText, r.Prerelease, r.CreatedAt, r.UpdatedAt,
	)
	return err
}

func (RepositoryReleaseMapper) ApplyPatch(ctx context.Context, tx *sql.Tx, id uint64, payload RepositoryReleasePatch) (bool, error) {
	if payload.UpdateText == nil {
		return true, nil
	}

	var query string
	var args []any
	if *payload.UpdateText == "" {
		query = "UPDATE repository_releases SET update_text = NULL, updated_at = $1 WHERE id = $2"
		args = []any{time.Now(), id}
	} else {
		query = "UPDATE repository_releases SET update_text = $1, updated_at = $2 WHERE id = $3"
		args = []any{*payload.UpdateText, time.Now(), id}
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

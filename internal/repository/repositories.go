// internal/repository/repositories.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charted-dev/charted/internal/common"
)

// RepositoryMapper implements Mapper[Repository, RepositoryPatch].
type RepositoryMapper struct{}

func (RepositoryMapper) Table() string      { return "repositories" }
func (RepositoryMapper) NameColumn() string { return "name" }

func (RepositoryMapper) SelectColumns() []string {
	return []string{
		"id", "name", "owner_id", "description", "icon_hash", "chart_type",
		"private", "deprecated", "created_at", "updated_at",
	}
}

func scanRepository(s userScanner) (Repository, error) {
	var r Repository
	var name, chartType string
	err := s.Scan(
		&r.ID, &name, &r.OwnerID, &r.Description, &r.IconHash, &chartType,
		&r.Private, &r.Deprecated, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return Repository{}, err
	}
	r.Name = common.Name(name)
	r.ChartType = ChartType(chartType)
	return r, nil
}

func (RepositoryMapper) ScanRow(row *sql.Row) (Repository, error)    { return scanRepository(row) }
func (RepositoryMapper) ScanRows(rows *sql.Rows) (Repository, error) { return scanRepository(rows) }

func (RepositoryMapper) ConflictFields(r Repository) []ConflictField {
	return []ConflictField{{Column: "name", Value: string(r.Name)}}
}

func (RepositoryMapper) InsertSkeleton(ctx context.Context, tx *sql.Tx, r Repository) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO repositories (id, name, owner_id, description, icon_hash, chart_type,
			private, deprecated, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		r.ID, string(r.Name), r.OwnerID, r.Description, r.IconHash, string(r.ChartType),
		r.Private, r.Deprecated, r.CreatedAt, r.UpdatedAt,
	)
	return err
}

func (RepositoryMapper) ApplyPatch(ctx context.Context, tx *sql.Tx, id uint64, payload RepositoryPatch) (bool, error) {
	sets, args := []string{}, []any{}
	argN := 1

	addString := func(column string, value *string) {
		if value == nil {
			return
		}
		if *value == "" {
			sets = append(sets, fmt.Sprintf("%s = NULL", column))
			return
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argN))
		args = append(args, *value)
		argN++
	}

	if payload.Name != nil {
		if _, err := common.NewName(*payload.Name); err != nil {
			return false, err
		}
		sets = append(sets, fmt.Sprintf("name = $%d", argN))
		args = append(args, *payload.Name)
		argN++
	}

	addString("description", payload.Description)
	addString("icon_hash", payload.IconHash)

	if payload.Private != nil {
		sets = append(sets, fmt.Sprintf("private = $%d", argN))
		args = append(args, *payload.Private)
		argN++
	}
	if payload.Deprecated != nil {
		sets = append(sets, fmt.Sprintf("deprecated = $%d", argN))
		args = append(args, *payload.Deprecated)
		argN++
	}

	if len(sets) == 0 {
		return true, nil
	}

	sets = append(sets, "updated_at = $"+itoa(argN))
	args = append(args, time.Now())
	argN++

	query := fmt.Sprintf("UPDATE repositories SET %s WHERE id = $%d", joinSets(sets), argN)
	args = append(args, id)

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

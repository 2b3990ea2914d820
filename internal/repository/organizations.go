// internal/repository/organizations.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charted-dev/charted/internal/common"
)

// OrganizationMapper implements Mapper[Organization, OrganizationPatch].
type OrganizationMapper struct{}

func (OrganizationMapper) Table() string      { return "organizations" }
func (OrganizationMapper) NameColumn() string { return "name" }

func (OrganizationMapper) SelectColumns() []string {
	return []string{
		"id", "name", "display_name", "owner_id", "gravatar_email", "icon_hash",
		"private", "verified_publisher", "created_at", "updated_at",
	}
}

func scanOrganization(s userScanner) (Organization, error) {
	var o Organization
	var name string
	err := s.Scan(
		&o.ID, &name, &o.DisplayName, &o.OwnerID, &o.GravatarEmail, &o.IconHash,
		&o.Private, &o.VerifiedPublisher, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return Organization{}, err
	}
	o.Name = common.Name(name)
	return o, nil
}

func (OrganizationMapper) ScanRow(row *sql.Row) (Organization, error)    { return scanOrganization(row) }
func (OrganizationMapper) ScanRows(rows *sql.Rows) (Organization, error) { return scanOrganization(rows) }

func (OrganizationMapper) ConflictFields(o Organization) []ConflictField {
	return []ConflictField{{Column: "name", Value: string(o.Name)}}
}

func (OrganizationMapper) InsertSkeleton(ctx context.Context, tx *sql.Tx, o Organization) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO organizations (id, name, display_name, owner_id, gravatar_email, icon_hash,
			private, verified_publisher, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID, string(o.Name), o.DisplayName, o.OwnerID, o.GravatarEmail, o.IconHash,
		o.Private, o.VerifiedPublisher, o.CreatedAt, o.UpdatedAt,
	)
	return err
}

func (OrganizationMapper) ApplyPatch(ctx context.Context, tx *sql.Tx, id uint64, payload OrganizationPatch) (bool, error) {
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

	addString("display_name", payload.DisplayName)
	addString("gravatar_email", payload.GravatarEmail)
	addString("icon_hash", payload.IconHash)

	if payload.Private != nil {
		sets = append(sets, fmt.Sprintf("private = $%d", argN))
		args = append(args, *payload.Private)
		argN++
	}

	if len(sets) == 0 {
		return true, nil
	}

	sets = append(sets, "updated_at = $"+itoa(argN))
	args = append(args, time.Now())
	argN++

	query := fmt.Sprintf("UPDATE organizations SET %s WHERE id = $%d", joinSets(sets), argN)
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

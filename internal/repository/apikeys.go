// internal/repository/apikeys.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charted-dev/charted/internal/common"
)

// ApiKeyMapper implements Mapper[ApiKey, ApiKeyPatch].
type ApiKeyMapper struct{}

func (ApiKeyMapper) Table() string      { return "api_keys" }
func (ApiKeyMapper) NameColumn() string { return "name" }

func (ApiKeyMapper) SelectColumns() []string {
	return []string{
		"id", "owner_id", "name", "description", "token_hash", "scopes",
		"expires_at", "created_at", "updated_at",
	}
}

func scanApiKey(s userScanner) (ApiKey, error) {
	var k ApiKey
	var name string
	err := s.Scan(
		&k.ID, &k.OwnerID, &name, &k.Description, &k.TokenHash, &k.Scopes,
		&k.ExpiresAt, &k.CreatedAt, &k.UpdatedAt,
	)
	if err != nil {
		return ApiKey{}, err
	}
	k.Name = common.Name(name)
	return k, nil
}

func (ApiKeyMapper) ScanRow(row *sql.Row) (ApiKey, error)    { return scanApiKey(row) }
func (ApiKeyMapper) ScanRows(rows *sql.Rows) (ApiKey, error) { return scanApiKey(rows) }

// FindByTokenHash resolves an API key by its hashed token value, bypassing
// the cache entirely - the authentication gate's ApiKey scheme is keyed by
// token, not id, the same way GetBy bypasses the cache for name lookups.
func FindByTokenHash(ctx context.Context, db *sql.DB, tokenHash string) (ApiKey, bool, error) {
	var mapper ApiKeyMapper
	query := fmt.Sprintf("SELECT %s FROM %s WHERE token_hash = $1", columnList(mapper.SelectColumns()), mapper.Table())
	row := db.QueryRowContext(ctx, query, tokenHash)
	key, err := scanApiKey(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return ApiKey{}, false, nil
		}
		return ApiKey{}, false, fmt.Errorf("query api key by token hash: %w", err)
	}
	return key, true, nil
}

func (ApiKeyMapper) ConflictFields(k ApiKey) []ConflictField {
	return []ConflictField{{Column: "name", Value: string(k.Name)}}
}

func (ApiKeyMapper) InsertSkeleton(ctx context.Context, tx *sql.Tx, k ApiKey) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO api_keys (id, owner_id, name, description, token_hash, scopes,
			expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		k.ID, k.OwnerID, string(k.Name), k.Description, k.TokenHash, k.Scopes,
		k.ExpiresAt, k.CreatedAt, k.UpdatedAt,
	)
	return err
}

func (ApiKeyMapper) ApplyPatch(ctx context.Context, tx *sql.Tx, id uint64, payload ApiKeyPatch) (bool, error) {
	sets, args := []string{}, []any{}
	argN := 1

	if payload.Description != nil {
		if *payload.Description == "" {
			sets = append(sets, "description = NULL")
		} else {
			sets = append(sets, fmt.Sprintf("description = $%d", argN))
			args = append(args, *payload.Description)
			argN++
		}
	}

	if payload.Scopes != nil {
		sets = append(sets, fmt.Sprintf("scopes = $%d", argN))
		args = append(args, *payload.Scopes)
		argN++
	}

	if payload.ExpiresAt != nil {
		if *payload.ExpiresAt == "" {
			sets = append(sets, "expires_at = NULL")
		} else {
			parsed, err := time.Parse(time.RFC3339, *payload.ExpiresAt)
			if err != nil {
				return false, fmt.Errorf("parse expires_at: %w", err)
			}
			sets = append(sets, fmt.Sprintf("expires_at = $%d", argN))
			args = append(args, parsed)
			argN++
		}
	}

	if len(sets) == 0 {
		return true, nil
	}

	sets = append(sets, "updated_at = $"+itoa(argN))
	args = append(args, time.Now())
	argN++

	query := fmt.Sprintf("UPDATE api_keys SET %s WHERE id = $%d", joinSets(sets), argN)
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

// internal/repository/users.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charted-dev/charted/internal/common"
)

// UserMapper implements Mapper[User, UserPatch].
type UserMapper struct{}

func (UserMapper) Table() string      { return "users" }
func (UserMapper) NameColumn() string { return "name" }

func (UserMapper) SelectColumns() []string {
	return []string{
		"id", "name", "display_name", "email", "password_hash", "description",
		"avatar_hash", "gravatar_email", "admin", "verified_publisher",
		"created_at", "updated_at",
	}
}

type userScanner interface {
	Scan(dest ...any) error
}

func scanUser(s userScanner) (User, error) {
	var u User
	var name string
	err := s.Scan(
		&u.ID, &name, &u.DisplayName, &u.Email, &u.PasswordHash, &u.Description,
		&u.AvatarHash, &u.GravatarEmail, &u.Admin, &u.VerifiedPublisher,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	u.Name = common.Name(name)
	return u, nil
}

func (UserMapper) ScanRow(row *sql.Row) (User, error)    { return scanUser(row) }
func (UserMapper) ScanRows(rows *sql.Rows) (User, error) { return scanUser(rows) }

func (UserMapper) ConflictFields(u User) []ConflictField {
	return []ConflictField{
		{Column: "name", Value: string(u.Name)},
		{Column: "email", Value: u.Email},
	}
}

func (UserMapper) InsertSkeleton(ctx context.Context, tx *sql.Tx, u User) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, name, display_name, email, password_hash, description,
			avatar_hash, gravatar_email, admin, verified_publisher, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		u.ID, string(u.Name), u.DisplayName, u.Email, u.PasswordHash, u.Description,
		u.AvatarHash, u.GravatarEmail, u.Admin, u.VerifiedPublisher, u.CreatedAt, u.UpdatedAt,
	)
	return err
}

func (UserMapper) ApplyPatch(ctx context.Context, tx *sql.Tx, id uint64, payload UserPatch) (bool, error) {
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
	if payload.Email != nil {
		sets = append(sets, fmt.Sprintf("email = $%d", argN))
		args = append(args, *payload.Email)
		argN++
	}
	addString("description", payload.Description)
	addString("gravatar_email", payload.GravatarEmail)

	if payload.Admin != nil {
		sets = append(sets, fmt.Sprintf("admin = $%d", argN))
		args = append(args, *payload.Admin)
		argN++
	}

	if len(sets) == 0 {
		return true, nil
	}

	sets = append(sets, "updated_at = $"+itoa(argN))
	args = append(args, time.Now())
	argN++

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", "users", joinSets(sets), argN)
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

func joinSets(sets []string) string {
	out := sets[0]
	for _, s := range sets[1:] {
		out += ", " + s
	}
	return out
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

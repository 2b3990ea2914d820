// internal/repository/pagination_test.go
package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charted-dev/charted/internal/cache"
)

func TestPaginate_NextCursorSetWhenOverfetched(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	worker := cache.NewMemoryCache(time.Minute, 1<<20, zap.NewNop())
	defer worker.Close()

	repo := New[User, UserPatch](db, worker, "users", UserMapper{}, zap.NewNop())

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "name", "display_name", "email", "password_hash", "description",
		"avatar_hash", "gravatar_email", "admin", "verified_publisher",
		"created_at", "updated_at",
	})
	for i := uint64(1); i <= 3; i++ { // per_page=2 -> fetch 3, overfetch by one
		rows.AddRow(i, "user", nil, "u@x.com", nil, nil, nil, nil, false, false, now, now)
	}
	mock.ExpectQuery("SELECT .* FROM users WHERE 1=1 ORDER BY id ASC LIMIT \\$1").
		WithArgs(3).
		WillReturnRows(rows)

	page, err := repo.Paginate(context.Background(), PaginateRequest{PerPage: 2, Order: OrderAsc})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	require.NotNil(t, page.PageInfo.Cursor)
	assert.EqualValues(t, 3, *page.PageInfo.Cursor)
}

func TestPaginate_NoNextCursorWhenExact(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	worker := cache.NewMemoryCache(time.Minute, 1<<20, zap.NewNop())
	defer worker.Close()

	repo := New[User, UserPatch](db, worker, "users", UserMapper{}, zap.NewNop())

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "name", "display_name", "email", "password_hash", "description",
		"avatar_hash", "gravatar_email", "admin", "verified_publisher",
		"created_at", "updated_at",
	}).AddRow(1, "user", nil, "u@x.com", nil, nil, nil, nil, false, false, now, now)

	mock.ExpectQuery("SELECT .* FROM users WHERE 1=1 ORDER BY id ASC LIMIT \\$1").
		WithArgs(3).
		WillReturnRows(rows)

	page, err := repo.Paginate(context.Background(), PaginateRequest{PerPage: 2, Order: OrderAsc})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Nil(t, page.PageInfo.Cursor)
}

func TestClampPerPage(t *testing.T) {
	assert.Equal(t, 20, clampPerPage(0))
	assert.Equal(t, maxPerPage, clampPerPage(1000))
	assert.Equal(t, 5, clampPerPage(5))
}

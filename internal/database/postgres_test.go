// internal/database/postgres_test.go
package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPostgres(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &Postgres{db: db}, mock
}

func TestConfig_DSN(t *testing.T) {
	cfg := Config{Host: "localhost", Port: 5432, Database: "charted", User: "charted"}
	assert.Equal(t, "host=localhost port=5432 user=charted dbname=charted sslmode=disable", cfg.DSN())

	cfg.Password = "secret"
	assert.Contains(t, cfg.DSN(), "password=secret")
}

func TestPostgres_Ping(t *testing.T) {
	pg, mock := newMockPostgres(t)
	mock.ExpectPing()

	require.NoError(t, pg.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateTables(t *testing.T) {
	pg, mock := newMockPostgres(t)
	for range schemaStatements {
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, pg.CreateTables(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateTables_PropagatesError(t *testing.T) {
	pg, mock := newMockPostgres(t)
	mock.ExpectExec(".*").WillReturnError(assertErr{})

	err := pg.CreateTables(context.Background())
	assert.Error(t, err)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

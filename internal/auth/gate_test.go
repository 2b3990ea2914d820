// internal/auth/gate_test.go
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charted-dev/charted/internal/cache"
	"github.com/charted-dev/charted/internal/common"
	"github.com/charted-dev/charted/internal/repository"
	"github.com/charted-dev/charted/internal/sessions"
)

func newTestGate(t *testing.T) (*Gate, sqlmock.Sqlmock, *sessions.Manager) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	worker := cache.NewMemoryCache(time.Minute, 1<<20, zap.NewNop())
	t.Cleanup(worker.Close)

	users := repository.New[repository.User, repository.UserPatch](db, worker, "users", repository.UserMapper{}, zap.NewNop())
	manager := sessions.NewManager(cache.NewMemorySessionStore(), []byte("test-secret"), zap.NewNop())

	return NewGate(users, db, manager, LocalBackend{}, true), mock, manager
}

func userColumns() []string {
	return []string{
		"id", "name", "display_name", "email", "password_hash", "description",
		"avatar_hash", "gravatar_email", "admin", "verified_publisher",
		"created_at", "updated_at",
	}
}

func userRow(id uint64, name string, passwordHash *string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userColumns()).AddRow(id, name, nil, "u@x.com", passwordHash, nil, nil, nil, false, false, now, now)
}

func TestGate_Authenticate_MissingHeader(t *testing.T) {
	g, _, _ := newTestGate(t)

	_, err := g.Authenticate(context.Background(), "", Authenticated())
	require.Error(t, err)
	assert.Equal(t, common.CodeMissingAuthorizationHeader, err.(*common.Error).Code)

	identity, err := g.Authenticate(context.Background(), "", Public())
	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestGate_Authenticate_MultiSpaceIsInvalid(t *testing.T) {
	g, _, _ := newTestGate(t)
	_, err := g.Authenticate(context.Background(), "Bearer foo bar", Authenticated())
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidAuthorizationParts, err.(*common.Error).Code)
}

func TestGate_Authenticate_UnknownScheme(t *testing.T) {
	g, _, _ := newTestGate(t)
	_, err := g.Authenticate(context.Background(), "Digest abc", Authenticated())
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidAuthenticationType, err.(*common.Error).Code)
}

func TestGate_Bearer_Success(t *testing.T) {
	g, mock, manager := newTestGate(t)
	ctx := context.Background()

	session, err := manager.Create(ctx, 42)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .* FROM users WHERE id = \\$1").
		WithArgs(uint64(42)).
		WillReturnRows(userRow(42, "noel", nil))

	identity, err := g.Authenticate(ctx, "Bearer "+session.AccessToken, Authenticated())
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.EqualValues(t, 42, identity.User.ID)
	assert.Equal(t, session.UUID, identity.Session.UUID)
}

func TestGate_Bearer_UnknownSession(t *testing.T) {
	g, _, manager := newTestGate(t)
	ctx := context.Background()

	session, err := manager.Create(ctx, 42)
	require.NoError(t, err)
	require.NoError(t, manager.Revoke(ctx, session.UUID))

	_, err = g.Authenticate(ctx, "Bearer "+session.AccessToken, Authenticated())
	require.Error(t, err)
	assert.Equal(t, common.CodeUnknownSession, err.(*common.Error).Code)
}

func TestGate_Bearer_RequiresRefreshToken(t *testing.T) {
	g, mock, manager := newTestGate(t)
	ctx := context.Background()

	session, err := manager.Create(ctx, 42)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .* FROM users WHERE id = \\$1").
		WithArgs(uint64(42)).
		WillReturnRows(userRow(42, "noel", nil))

	_, err = g.Authenticate(ctx, "Bearer "+session.AccessToken, Policy{RequireRefreshToken: true})
	require.Error(t, err)
	assert.Equal(t, common.CodeRefreshTokenRequired, err.(*common.Error).Code)

	mock.ExpectQuery("SELECT .* FROM users WHERE id = \\$1").
		WithArgs(uint64(42)).
		WillReturnRows(userRow(42, "noel", nil))

	identity, err := g.Authenticate(ctx, "Bearer "+session.RefreshToken, Policy{RequireRefreshToken: true})
	require.NoError(t, err)
	assert.NotNil(t, identity)
}

func TestGate_Basic_Success(t *testing.T) {
	g, mock, _ := newTestGate(t)
	ctx := context.Background()

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .* FROM users WHERE name = \\$1").
		WithArgs("noel").
		WillReturnRows(userRow(42, "noel", &hash))

	value := base64.StdEncoding.EncodeToString([]byte("noel:correct horse"))
	identity, err := g.Authenticate(ctx, "Basic "+value, Authenticated())
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.EqualValues(t, 42, identity.User.ID)
}

func TestGate_Basic_WrongPassword(t *testing.T) {
	g, mock, _ := newTestGate(t)
	ctx := context.Background()

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .* FROM users WHERE name = \\$1").
		WithArgs("noel").
		WillReturnRows(userRow(42, "noel", &hash))

	value := base64.StdEncoding.EncodeToString([]byte("noel:wrong"))
	_, err = g.Authenticate(ctx, "Basic "+value, Authenticated())
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidPassword, err.(*common.Error).Code)
}

func TestGate_Basic_RejectsColonInPassword(t *testing.T) {
	g, _, _ := newTestGate(t)
	value := base64.StdEncoding.EncodeToString([]byte("noel:pa:ss"))
	_, err := g.Authenticate(context.Background(), "Basic "+value, Authenticated())
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidAuthorizationParts, err.(*common.Error).Code)
}

func TestGate_Basic_ForbiddenWhenRefreshTokenRequired(t *testing.T) {
	g, _, _ := newTestGate(t)
	value := base64.StdEncoding.EncodeToString([]byte("noel:pw"))
	_, err := g.Authenticate(context.Background(), "Basic "+value, Policy{RequireRefreshToken: true})
	require.Error(t, err)
	assert.Equal(t, common.CodeRefreshTokenRequired, err.(*common.Error).Code)
}

func TestGate_ApiKey_Success(t *testing.T) {
	g, mock, _ := newTestGate(t)
	ctx := context.Background()

	sum := sha256.Sum256([]byte("my-token"))
	hash := hex.EncodeToString(sum[:])

	mock.ExpectQuery("SELECT .* FROM api_keys WHERE token_hash = \\$1").
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_id", "name", "description", "token_hash", "scopes",
			"expires_at", "created_at", "updated_at",
		}).AddRow(7, 42, "ci", nil, hash, uint64(1<<5), nil, time.Now(), time.Now()))

	mock.ExpectQuery("SELECT .* FROM users WHERE id = \\$1").
		WithArgs(uint64(42)).
		WillReturnRows(userRow(42, "noel", nil))

	identity, err := g.Authenticate(ctx, "ApiKey my-token", RequiringScopes(1<<5))
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.EqualValues(t, 42, identity.User.ID)
}

func TestGate_ApiKey_InsufficientScope(t *testing.T) {
	g, mock, _ := newTestGate(t)
	ctx := context.Background()

	sum := sha256.Sum256([]byte("my-token"))
	hash := hex.EncodeToString(sum[:])

	mock.ExpectQuery("SELECT .* FROM api_keys WHERE token_hash = \\$1").
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_id", "name", "description", "token_hash", "scopes",
			"expires_at", "created_at", "updated_at",
		}).AddRow(7, 42, "ci", nil, hash, uint64(1<<5), nil, time.Now(), time.Now()))

	mock.ExpectQuery("SELECT .* FROM users WHERE id = \\$1").
		WithArgs(uint64(42)).
		WillReturnRows(userRow(42, "noel", nil))

	_, err := g.Authenticate(ctx, "ApiKey my-token", RequiringScopes(1<<6))
	require.Error(t, err)
	assert.Equal(t, common.CodeInsufficientScope, err.(*common.Error).Code)
}

func TestGate_ApiKey_Expired(t *testing.T) {
	g, mock, _ := newTestGate(t)
	ctx := context.Background()

	sum := sha256.Sum256([]byte("my-token"))
	hash := hex.EncodeToString(sum[:])
	expired := time.Now().Add(-time.Hour)

	mock.ExpectQuery("SELECT .* FROM api_keys WHERE token_hash = \\$1").
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_id", "name", "description", "token_hash", "scopes",
			"expires_at", "created_at", "updated_at",
		}).AddRow(7, 42, "ci", nil, hash, uint64(0), expired, time.Now(), time.Now()))

	_, err := g.Authenticate(ctx, "ApiKey my-token", Authenticated())
	require.Error(t, err)
	assert.Equal(t, common.CodeSessionExpired, err.(*common.Error).Code)
}

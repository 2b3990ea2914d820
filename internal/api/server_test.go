// internal/api/server_test.go
package api

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charted-dev/charted/internal/auth"
	"github.com/charted-dev/charted/internal/cache"
	"github.com/charted-dev/charted/internal/common"
	"github.com/charted-dev/charted/internal/config"
	"github.com/charted-dev/charted/internal/storage"
)

func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	worker := cache.NewMemoryCache(time.Minute, 1<<20, zap.NewNop())
	t.Cleanup(worker.Close)

	driver, err := storage.NewLocalDriver(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	snowflake, err := common.NewSnowflake(1)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.JWTSecretKey = "test-secret"

	instance := NewInstance(cfg, zap.NewNop(), db, driver, worker, cache.NewMemorySessionStore(), snowflake, true)
	return NewServer(instance), mock
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) common.Envelope {
	t.Helper()
	var env common.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestServer_HandleEntrypoint(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
}

func TestServer_HandleHeartbeat(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/heartbeat", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ok.", rec.Body.String())
}

func TestServer_HandleInfo_ReportsDistributionKind(t *testing.T) {
	s, _ := newTestServer(t)
	s.instance.Config.DistributionKind = "kubernetes"

	req := httptest.NewRequest(http.MethodGet, "/v1/info", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]interface{})
	assert.Equal(t, "kubernetes", data["distribution"])
}

func TestServer_HandleFeatures(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/features", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_CreateUser_Success(t *testing.T) {
	s, mock := newTestServer(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	body := `{"username":"noel","password":"hunter22","email":"noel@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestServer_CreateUser_RegistrationsDisabled(t *testing.T) {
	s, _ := newTestServer(t)
	s.instance.Config.Registrations.Enabled = false
	s.instance.Config.SingleUser = false

	body := `{"username":"noel","password":"hunter22","email":"noel@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, common.CodeRegistrationsDisabled, env.Errors[0].Code)
}

func TestServer_GetUser_NotFound(t *testing.T) {
	s, mock := newTestServer(t)

	mock.ExpectQuery("SELECT .* FROM users WHERE name = \\$1").
		WithArgs("noel").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "display_name", "email", "password_hash", "description",
			"avatar_hash", "gravatar_email", "admin", "verified_publisher",
			"created_at", "updated_at",
		}))

	req := httptest.NewRequest(http.MethodGet, "/v1/users/noel", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_PatchUser_RequiresAuthHeader(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPatch, "/v1/users/noel", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, common.CodeMissingAuthorizationHeader, env.Errors[0].Code)
}

func userRows(id uint64, name, passwordHash string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "display_name", "email", "password_hash", "description",
		"avatar_hash", "gravatar_email", "admin", "verified_publisher",
		"created_at", "updated_at",
	}).AddRow(id, name, nil, "noel@example.com", passwordHash, nil, nil, nil, false, false, now, now)
}

func TestServer_Login_Success(t *testing.T) {
	s, mock := newTestServer(t)

	hash, err := auth.HashPassword("hunter22")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .* FROM users WHERE name = \\$1").
		WithArgs("noel").
		WillReturnRows(userRows(42, "noel", hash))

	body := `{"username":"noel","password":"hunter22"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/users/login", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestServer_Login_WrongPassword(t *testing.T) {
	s, mock := newTestServer(t)

	hash, err := auth.HashPassword("hunter22")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .* FROM users WHERE name = \\$1").
		WithArgs("noel").
		WillReturnRows(userRows(42, "noel", hash))

	body := `{"username":"noel","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/users/login", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func repositoryRows(id, ownerID uint64, name string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "owner_id", "description", "icon_hash", "chart_type",
		"private", "deprecated", "created_at", "updated_at",
	}).AddRow(id, name, ownerID, nil, nil, "application", false, false, now, now)
}

func multipartTarballBody(t *testing.T, data []byte) (string, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "demo-1.0.0.tgz")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return w.FormDataContentType(), &buf
}

func buildDemoTarball(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	chartYAML := []byte("apiVersion: v2\nname: demo\nversion: 1.0.0\n")
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: "demo/Chart.yaml",
		Mode: 0o644,
		Size: int64(len(chartYAML)),
	}))
	_, err := tw.Write(chartYAML)
	require.NoError(t, err)

	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func apiKeyRows(id, ownerID uint64, tokenHash string, scopes uint64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "owner_id", "name", "description", "token_hash", "scopes",
		"expires_at", "created_at", "updated_at",
	}).AddRow(id, ownerID, "ci", nil, tokenHash, scopes, nil, now, now)
}

func TestServer_UploadAndDownloadTarball(t *testing.T) {
	s, mock := newTestServer(t)

	token := "chp_test-token"
	sum := sha256.Sum256([]byte(token))
	tokenHash := hex.EncodeToString(sum[:])

	mock.ExpectQuery("SELECT .* FROM api_keys WHERE token_hash = \\$1").
		WithArgs(tokenHash).
		WillReturnRows(apiKeyRows(1, 7, tokenHash, common.ScopeReleaseUpload))
	mock.ExpectQuery("SELECT .* FROM users WHERE id = \\$1").
		WithArgs(uint64(7)).
		WillReturnRows(userRows(7, "noel", ""))
	mock.ExpectQuery("SELECT .* FROM repositories WHERE id = \\$1").
		WithArgs(uint64(23)).
		WillReturnRows(repositoryRows(23, 7, "demo"))

	data := buildDemoTarball(t)
	contentType, body := multipartTarballBody(t, data)

	uploadReq := httptest.NewRequest(http.MethodPut, "/v1/repositories/23/releases/1.0.0/tarball", body)
	uploadReq.Header.Set("Content-Type", contentType)
	uploadReq.Header.Set("Authorization", "ApiKey "+token)
	uploadRec := httptest.NewRecorder()
	s.Router().ServeHTTP(uploadRec, uploadReq)

	require.Equal(t, http.StatusCreated, uploadRec.Code, uploadRec.Body.String())

	downloadReq := httptest.NewRequest(http.MethodGet, "/v1/repositories/23/releases/1.0.0/tarball", nil)
	downloadRec := httptest.NewRecorder()
	s.Router().ServeHTTP(downloadRec, downloadReq)

	assert.Equal(t, http.StatusOK, downloadRec.Code)
	assert.Equal(t, "application/gzip", downloadRec.Header().Get("Content-Type"))
	assert.Equal(t, data, downloadRec.Body.Bytes())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestServer_CreateApiKey_RequiresAuth(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/apikeys", bytes.NewBufferString(`{"name":"ci"}`))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// internal/api/handlers_apikeys.go
package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charted-dev/charted/internal/apikeys"
	"github.com/charted-dev/charted/internal/common"
	"github.com/charted-dev/charted/internal/repository"
)

var apiKeyGenerator = apikeys.NewGenerator()

type createApiKeyRequest struct {
	Name      string  `json:"name"`
	Scopes    uint64  `json:"scopes"`
	ExpiresAt *string `json:"expires_at"`
}

func (s *Server) handleCreateApiKey(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	if identity == nil {
		writeErr(w, s.logger, common.NewError(common.CodeMissingAuthorizationHeader, "authentication required"))
		return
	}

	var req createApiKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, s.logger, common.NewError(common.CodeValidationFailed, "malformed request body"))
		return
	}

	name, err := common.NewName(req.Name)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}

	token, err := apiKeyGenerator.Generate()
	if err != nil {
		writeErr(w, s.logger, common.NewError(common.CodeInternalServerError, "failed to generate token"))
		return
	}
	sum := sha256.Sum256([]byte(token))
	hash := hex.EncodeToString(sum[:])

	var expiresAt *time.Time
	if req.ExpiresAt != nil && *req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			writeErr(w, s.logger, common.NewError(common.CodeValidationFailed, "expires_at must be RFC3339"))
			return
		}
		expiresAt = &t
	}

	id, err := s.instance.Snowflake.Generate()
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}

	now := time.Now()
	key := repository.ApiKey{
		ID:        id,
		OwnerID:   identity.User.ID,
		Name:      name,
		TokenHash: hash,
		Scopes:    req.Scopes,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.instance.ApiKeys.Create(r.Context(), key); err != nil {
		writeErr(w, s.logger, err)
		return
	}

	// token is returned exactly once - it is never persisted in plaintext.
	writeOk(w, s.logger, http.StatusCreated, map[string]interface{}{
		"key":   key,
		"token": token,
	})
}

func (s *Server) handleListApiKeys(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	if identity == nil {
		writeErr(w, s.logger, common.NewError(common.CodeMissingAuthorizationHeader, "authentication required"))
		return
	}

	page, err := s.instance.ApiKeys.Paginate(r.Context(), repository.PaginateRequest{
		OwnerID: &identity.User.ID,
	})
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}
	writeOk(w, s.logger, http.StatusOK, page)
}

func (s *Server) handleDeleteApiKey(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	if identity == nil {
		writeErr(w, s.logger, common.NewError(common.CodeMissingAuthorizationHeader, "authentication required"))
		return
	}

	id, err := parsePathUint(r, "id")
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}

	key, found, err := s.instance.ApiKeys.Get(r.Context(), id)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}
	if !found {
		writeErr(w, s.logger, common.NewError(common.CodeEntityNotFound, "api key not found"))
		return
	}
	if key.OwnerID != identity.User.ID && !identity.User.Admin {
		writeErr(w, s.logger, common.NewError(common.CodeInsufficientScope, "cannot delete another user's api key"))
		return
	}

	if err := s.instance.ApiKeys.Delete(r.Context(), id); err != nil {
		writeErr(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

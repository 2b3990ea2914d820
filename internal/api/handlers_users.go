// internal/api/handlers_users.go
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/charted-dev/charted/internal/auth"
	"github.com/charted-dev/charted/internal/common"
	"github.com/charted-dev/charted/internal/repository"
)

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if !s.instance.Config.Registrations.Enabled && !s.instance.Config.SingleUser {
		writeErr(w, s.logger, common.NewError(common.CodeRegistrationsDisabled, "registrations are disabled"))
		return
	}

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, s.logger, common.NewError(common.CodeValidationFailed, "malformed request body"))
		return
	}

	name, err := common.NewName(req.Username)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}

	id, err := s.instance.Snowflake.Generate()
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}

	now := time.Now()
	user := repository.User{
		ID:           id,
		Name:         name,
		Email:        req.Email,
		PasswordHash: &hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.instance.Users.Create(r.Context(), user); err != nil {
		writeErr(w, s.logger, err)
		return
	}

	writeOk(w, s.logger, http.StatusCreated, user)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	nameOrID, err := common.ParseNameOrId(chi.URLParam(r, "idOrName"))
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}

	user, found, err := s.instance.Users.GetBy(r.Context(), nameOrID)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}
	if !found {
		writeErr(w, s.logger, common.NewError(common.CodeEntityNotFound, "user not found"))
		return
	}

	writeOk(w, s.logger, http.StatusOK, user)
}

type patchUserRequest struct {
	DisplayName   *string `json:"display_name"`
	Email         *string `json:"email"`
	Description   *string `json:"description"`
	GravatarEmail *string `json:"gravatar_email"`
}

func (s *Server) handlePatchUser(w http.ResponseWriter, r *http.Request) {
	nameOrID, err := common.ParseNameOrId(chi.URLParam(r, "idOrName"))
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}

	identity := identityFromContext(r.Context())
	target, found, err := s.instance.Users.GetBy(r.Context(), nameOrID)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}
	if !found {
		writeErr(w, s.logger, common.NewError(common.CodeEntityNotFound, "user not found"))
		return
	}
	if identity == nil || (identity.User.ID != target.ID && !identity.User.Admin) {
		writeErr(w, s.logger, common.NewError(common.CodeInsufficientScope, "cannot modify another user"))
		return
	}

	var req patchUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, s.logger, common.NewError(common.CodeValidationFailed, "malformed request body"))
		return
	}

	patch := repository.UserPatch{
		DisplayName:   req.DisplayName,
		Email:         req.Email,
		Description:   req.Description,
		GravatarEmail: req.GravatarEmail,
	}
	found, err = s.instance.Users.Patch(r.Context(), target.ID, patch)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}
	if !found {
		writeErr(w, s.logger, common.NewError(common.CodeEntityNotFound, "user not found"))
		return
	}

	writeOk(w, s.logger, http.StatusOK, map[string]bool{"patched": true})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	nameOrID, err := common.ParseNameOrId(chi.URLParam(r, "idOrName"))
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}

	identity := identityFromContext(r.Context())
	target, found, err := s.instance.Users.GetBy(r.Context(), nameOrID)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}
	if !found {
		writeErr(w, s.logger, common.NewError(common.CodeEntityNotFound, "user not found"))
		return
	}
	if identity == nil || (identity.User.ID != target.ID && !identity.User.Admin) {
		writeErr(w, s.logger, common.NewError(common.CodeInsufficientScope, "cannot delete another user"))
		return
	}

	if err := s.instance.Users.Delete(r.Context(), target.ID); err != nil {
		writeErr(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, s.logger, common.NewError(common.CodeValidationFailed, "malformed request body"))
		return
	}

	nameOrID, err := common.ParseNameOrId(req.Username)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}

	user, found, err := s.instance.Users.GetBy(r.Context(), nameOrID)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}
	if !found || user.PasswordHash == nil {
		writeErr(w, s.logger, common.NewError(common.CodeInvalidPassword, "incorrect username or password"))
		return
	}

	ok, err := (auth.LocalBackend{}).Verify(r.Context(), *user.PasswordHash, req.Password)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}
	if !ok {
		writeErr(w, s.logger, common.NewError(common.CodeInvalidPassword, "incorrect username or password"))
		return
	}

	session, err := s.instance.Sessions.Create(r.Context(), user.ID)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}

	writeOk(w, s.logger, http.StatusCreated, session)
}

func (s *Server) handleRevokeSession(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")
	identity := identityFromContext(r.Context())
	if identity == nil || identity.Session == nil || identity.Session.UUID != uuid {
		writeErr(w, s.logger, common.NewError(common.CodeInsufficientScope, "cannot revoke another session"))
		return
	}

	if err := s.instance.Sessions.Revoke(r.Context(), uuid); err != nil {
		writeErr(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

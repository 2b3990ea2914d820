// internal/api/handlers_organizations.go
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/charted-dev/charted/internal/common"
	"github.com/charted-dev/charted/internal/repository"
)

type createOrganizationRequest struct {
	Name    string `json:"name"`
	OwnerID uint64 `json:"owner_id"`
	Private bool   `json:"private"`
}

func (s *Server) handleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req createOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, s.logger, common.NewError(common.CodeValidationFailed, "malformed request body"))
		return
	}

	name, err := common.NewName(req.Name)
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
	org := repository.Organization{
		ID:        id,
		Name:      name,
		OwnerID:   req.OwnerID,
		Private:   req.Private,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.instance.Organizations.Create(r.Context(), org); err != nil {
		writeErr(w, s.logger, err)
		return
	}

	writeOk(w, s.logger, http.StatusCreated, org)
}

func (s *Server) resolveOrganization(r *http.Request) (repository.Organization, error) {
	nameOrID, err := common.ParseNameOrId(chi.URLParam(r, "idOrName"))
	if err != nil {
		return repository.Organization{}, err
	}
	org, found, err := s.instance.Organizations.GetBy(r.Context(), nameOrID)
	if err != nil {
		return repository.Organization{}, err
	}
	if !found {
		return repository.Organization{}, common.NewError(common.CodeEntityNotFound, "organization not found")
	}
	return org, nil
}

func (s *Server) handleGetOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := s.resolveOrganization(r)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}
	writeOk(w, s.logger, http.StatusOK, org)
}

type patchOrganizationRequest struct {
	DisplayName   *string `json:"display_name"`
	GravatarEmail *string `json:"gravatar_email"`
	IconHash      *string `json:"icon_hash"`
	Private       *bool   `json:"private"`
}

func (s *Server) handlePatchOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := s.resolveOrganization(r)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}

	var req patchOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, s.logger, common.NewError(common.CodeValidationFailed, "malformed request body"))
		return
	}

	patch := repository.OrganizationPatch{
		DisplayName:   req.DisplayName,
		GravatarEmail: req.GravatarEmail,
		IconHash:      req.IconHash,
		Private:       req.Private,
	}
	if _, err := s.instance.Organizations.Patch(r.Context(), org.ID, patch); err != nil {
		writeErr(w, s.logger, err)
		return
	}
	writeOk(w, s.logger, http.StatusOK, map[string]bool{"patched": true})
}

func (s *Server) handleDeleteOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := s.resolveOrganization(r)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}
	if err := s.instance.Organizations.Delete(r.Context(), org.ID); err != nil {
		writeErr(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

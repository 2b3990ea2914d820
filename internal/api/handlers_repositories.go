// internal/api/handlers_repositories.go
package api

import (
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/charted-dev/charted/internal/common"
	"github.com/charted-dev/charted/internal/repository"
)

// maxTarballSize bounds a single uploaded chart tarball, per spec.md
// §4.10's "reject an oversized single file part" rule.
const maxTarballSize = 32 << 20

type createRepositoryRequest struct {
	Name        string              `json:"name"`
	OwnerID     uint64              `json:"owner_id"`
	Description *string             `json:"description"`
	ChartType   repository.ChartType `json:"chart_type"`
	Private     bool                `json:"private"`
}

func (s *Server) handleCreateRepository(w http.ResponseWriter, r *http.Request) {
	var req createRepositoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, s.logger, common.NewError(common.CodeValidationFailed, "malformed request body"))
		return
	}

	name, err := common.NewName(req.Name)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}
	chartType := req.ChartType
	if chartType == "" {
		chartType = repository.ChartTypeApplication
	}

	id, err := s.instance.Snowflake.Generate()
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}

	now := time.Now()
	repo := repository.Repository{
		ID:          id,
		Name:        name,
		OwnerID:     req.OwnerID,
		Description: req.Description,
		ChartType:   chartType,
		Private:     req.Private,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.instance.Repositories.Create(r.Context(), repo); err != nil {
		writeErr(w, s.logger, err)
		return
	}

	writeOk(w, s.logger, http.StatusCreated, repo)
}

func (s *Server) resolveRepository(r *http.Request) (repository.Repository, error) {
	nameOrID, err := common.ParseNameOrId(chi.URLParam(r, "idOrName"))
	if err != nil {
		return repository.Repository{}, err
	}
	repo, found, err := s.instance.Repositories.GetBy(r.Context(), nameOrID)
	if err != nil {
		return repository.Repository{}, err
	}
	if !found {
		return repository.Repository{}, common.NewError(common.CodeEntityNotFound, "repository not found")
	}
	return repo, nil
}

func (s *Server) handleGetRepository(w http.ResponseWriter, r *http.Request) {
	repo, err := s.resolveRepository(r)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}
	writeOk(w, s.logger, http.StatusOK, repo)
}

type patchRepositoryRequest struct {
	Description *string `json:"description"`
	IconHash    *string `json:"icon_hash"`
	Private     *bool   `json:"private"`
	Deprecated  *bool   `json:"deprecated"`
}

func (s *Server) handlePatchRepository(w http.ResponseWriter, r *http.Request) {
	repo, err := s.resolveRepository(r)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}

	var req patchRepositoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, s.logger, common.NewError(common.CodeValidationFailed, "malformed request body"))
		return
	}

	patch := repository.RepositoryPatch{
		Description: req.Description,
		IconHash:    req.IconHash,
		Private:     req.Private,
		Deprecated:  req.Deprecated,
	}
	if _, err := s.instance.Repositories.Patch(r.Context(), repo.ID, patch); err != nil {
		writeErr(w, s.logger, err)
		return
	}
	writeOk(w, s.logger, http.StatusOK, map[string]bool{"patched": true})
}

func (s *Server) handleDeleteRepository(w http.ResponseWriter, r *http.Request) {
	repo, err := s.resolveRepository(r)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}
	if err := s.instance.Repositories.Delete(r.Context(), repo.ID); err != nil {
		writeErr(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListReleases(w http.ResponseWriter, r *http.Request) {
	repo, err := s.resolveRepository(r)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}

	page, err := s.instance.Releases.Paginate(r.Context(), repository.PaginateRequest{
		Order:    repository.OrderDesc,
		Metadata: map[string]uint64{"repository": repo.ID},
	})
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}
	writeOk(w, s.logger, http.StatusOK, page)
}

func (s *Server) handleGetRelease(w http.ResponseWriter, r *http.Request) {
	repo, err := s.resolveRepository(r)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}

	semver := chi.URLParam(r, "semver")
	page, err := s.instance.Releases.Paginate(r.Context(), repository.PaginateRequest{
		PerPage:  1,
		Metadata: map[string]uint64{"repository": repo.ID},
	})
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}
	for _, rel := range page.Data {
		if rel.Tag == semver {
			writeOk(w, s.logger, http.StatusOK, rel)
			return
		}
	}
	writeErr(w, s.logger, common.NewError(common.CodeEntityNotFound, "release not found"))
}

func (s *Server) handleDeleteRelease(w http.ResponseWriter, r *http.Request) {
	repo, err := s.resolveRepository(r)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}
	semver := chi.URLParam(r, "semver")

	if err := s.instance.Charts.DeleteRelease(r.Context(), repo.OwnerID, repo.ID, semver); err != nil {
		writeErr(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUploadTarball streams a multipart chart tarball upload into the
// chart engine. The boundary comes from Content-Type, and the body is read
// through multipart.Reader.NextPart so memory never holds more than one
// part's bytes beyond maxTarballSize, per spec.md §4.10.
func (s *Server) handleUploadTarball(w http.ResponseWriter, r *http.Request) {
	repo, err := s.resolveRepository(r)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}

	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		writeErr(w, s.logger, common.NewError(common.CodeMissingContentType, "expected multipart/form-data"))
		return
	}
	boundary, ok := params["boundary"]
	if !ok {
		writeErr(w, s.logger, common.NewError(common.CodeMissingContentType, "missing multipart boundary"))
		return
	}

	reader := multipart.NewReader(r.Body, boundary)
	part, err := reader.NextPart()
	if err != nil {
		writeErr(w, s.logger, common.NewError(common.CodeMissingFile, "no file part in request"))
		return
	}
	defer func() { _ = part.Close() }()

	limited := io.LimitReader(part, maxTarballSize+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		writeErr(w, s.logger, common.NewError(common.CodeInternalServerError, "failed to read upload"))
		return
	}
	if len(data) > maxTarballSize {
		writeErr(w, s.logger, common.NewError(common.CodeObjectTooLarge, "tarball exceeds the maximum upload size"))
		return
	}

	version, err := s.instance.Charts.UploadRelease(r.Context(), repo.OwnerID, repo.ID, data)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}
	s.metrics.observeTarballUpload(repo.ID)

	writeOk(w, s.logger, http.StatusCreated, map[string]string{"version": version})
}

func (s *Server) handleDownloadTarball(w http.ResponseWriter, r *http.Request) {
	repo, err := s.resolveRepository(r)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}
	semver := chi.URLParam(r, "semver")

	allowPrereleases := r.URL.Query().Get("prerelease") == "true"
	data, err := s.instance.Charts.GetTarball(r.Context(), repo.OwnerID, repo.ID, semver, allowPrereleases)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/gzip")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

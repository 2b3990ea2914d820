// internal/api/handlers_meta.go
package api

import (
	"net/http"
	"runtime"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/charted-dev/charted/internal/common"
)

func (s *Server) handleEntrypoint(w http.ResponseWriter, r *http.Request) {
	writeOk(w, s.logger, http.StatusOK, map[string]string{
		"message": "hello world",
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeOk(w, s.logger, http.StatusOK, map[string]interface{}{
		"distribution": s.instance.Config.DistributionKind,
		"go_version":   runtime.Version(),
		"single_user":  s.instance.Config.SingleUser,
	})
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Ok."))
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	writeOk(w, s.logger, http.StatusOK, map[string]bool{
		"registrations": s.instance.Config.Registrations.Enabled,
		"single_user":   s.instance.Config.SingleUser,
	})
}

var (
	openAPIOnce sync.Once
	openAPIDoc  []byte
)

// handleOpenAPI serves the generated OpenAPI document, built once and
// cached for the process lifetime, per spec.md §4.10.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	openAPIOnce.Do(func() {
		openAPIDoc = generateOpenAPIDocument()
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPIDoc)
}

func generateOpenAPIDocument() []byte {
	return []byte(`{"openapi":"3.0.3","info":{"title":"charted","version":"1"},"paths":{}}`)
}

// handleIndex serves an owner's regenerated index.yaml as a YAML body.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "idOrName")
	nameOrID, err := common.ParseNameOrId(raw)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}

	owner, found, err := lookupOwner(r.Context(), s.instance, nameOrID)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}
	if !found {
		writeErr(w, s.logger, common.NewError(common.CodeEntityNotFound, "owner not found"))
		return
	}

	if err := s.instance.Charts.RegenerateIndex(r.Context(), owner.ID); err != nil {
		writeErr(w, s.logger, err)
		return
	}

	data, found, err := readIndexBlob(r.Context(), s.instance, owner.ID)
	if err != nil {
		writeErr(w, s.logger, err)
		return
	}
	if !found {
		writeErr(w, s.logger, common.NewError(common.CodeEntityNotFound, "index not found"))
		return
	}

	writeYAML(w, data)
}

func parsePathUint(r *http.Request, name string) (uint64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, common.NewError(common.CodeUnableToParsePathParam, "path parameter is not a valid id").WithDetail("parameter", name)
	}
	return id, nil
}

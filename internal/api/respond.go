// internal/api/respond.go
package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/charted-dev/charted/internal/common"
)

// writeOk writes a success envelope with the given payload.
func writeOk(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	writeEnvelope(w, logger, status, common.Ok(data))
}

// writeErr writes a failure envelope; the HTTP status is derived from err's
// code, per spec.md §4.10.
func writeErr(w http.ResponseWriter, logger *zap.Logger, err error) {
	e := common.AsError(err)
	if common.HTTPStatus(e.Code) == http.StatusInternalServerError {
		logger.Error("request failed", zap.String("code", string(e.Code)), zap.Error(err))
	}
	writeEnvelope(w, logger, common.HTTPStatus(e.Code), common.Fail(e))
}

func writeEnvelope(w http.ResponseWriter, logger *zap.Logger, status int, env common.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.Warn("failed to encode response envelope", zap.Error(err))
	}
}

// writeYAML writes raw YAML bytes, used by the index.yaml route - the one
// response shape the envelope does not cover, per spec.md §6.
func writeYAML(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

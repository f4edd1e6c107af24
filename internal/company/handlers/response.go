package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	e "github.com/coronavstech/companies/internal/company/errors"
	"go.uber.org/zap"
)

const (
	detailNotFound    = "Not found."
	detailServerError = "A server error occurred."
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeError maps service errors onto HTTP responses. Field violations become
// {"field": ["message", ...]}.
func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	var verr *e.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, verr.Fields)
	case errors.Is(err, e.ErrNotFound):
		writeDetail(w, http.StatusNotFound, detailNotFound)
	case errors.Is(err, e.ErrInvalidInput):
		writeDetail(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, detailServerError)
	}
}

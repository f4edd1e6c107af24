package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HTTPHandler serves the company resource over JSON HTTP.
type HTTPHandler struct {
	service CompanyController
	store   Pinger
	logger  *zap.Logger
}

// NewHTTPHandler constructs an HTTPHandler. store backs the readiness probe
// and may be nil.
func NewHTTPHandler(service CompanyController, store Pinger, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		service: service,
		store:   store,
		logger:  logger.Named("http_handler"),
	}
}

func (h *HTTPHandler) listCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.service.ListCompanies(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, companies)
}

func (h *HTTPHandler) createCompany(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	created, err := h.service.CreateCompany(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) getCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := companyID(w, r)
	if !ok {
		return
	}
	company, err := h.service.GetCompany(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (h *HTTPHandler) replaceCompany(w http.ResponseWriter, r *http.Request) {
	h.updateCompany(w, r, false)
}

func (h *HTTPHandler) patchCompany(w http.ResponseWriter, r *http.Request) {
	h.updateCompany(w, r, true)
}

func (h *HTTPHandler) updateCompany(w http.ResponseWriter, r *http.Request, partial bool) {
	id, ok := companyID(w, r)
	if !ok {
		return
	}
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	updated, err := h.service.UpdateCompany(r.Context(), id, in, partial)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) deleteCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := companyID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteCompany(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) readyz(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			h.logger.Warn("Readiness check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// companyID reads the {id} URL parameter. An id that is not a UUID cannot
// match any company, so it is reported as not found.
func companyID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return uuid.Nil, false
	}
	return id, true
}

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/coronavstech/companies/internal/company/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
)

// RouterOptions configures the HTTP middleware chain.
type RouterOptions struct {
	// JWTSecret enables bearer auth on writes when set.
	JWTSecret string
	// RateLimit is the number of requests per minute allowed per client IP.
	// Zero disables rate limiting.
	RateLimit int
	// Development relaxes the secure headers for local use.
	Development bool
}

// NewRouter mounts the company resource and health probes. Paths work with
// and without a trailing slash.
func NewRouter(h *HTTPHandler, opts RouterOptions) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'",
		IsDevelopment:         opts.Development,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(h.logger.Named("access")))
	r.Use(recoverer(h.logger))
	r.Use(middleware.StripSlashes)
	r.Use(secureMiddleware.Handler)
	if opts.RateLimit > 0 {
		r.Use(httprate.Limit(opts.RateLimit, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
				writeDetail(w, http.StatusTooManyRequests, "Request was throttled.")
			}),
		))
	}
	r.Use(auth.HTTPMiddleware(opts.JWTSecret))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, detailNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %q not allowed.", r.Method))
	})

	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)

	r.Route("/companies", func(r chi.Router) {
		r.Get("/", h.listCompanies)
		r.Post("/", h.createCompany)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getCompany)
			r.Put("/", h.replaceCompany)
			r.Patch("/", h.patchCompany)
			r.Delete("/", h.deleteCompany)
		})
	})

	return r
}

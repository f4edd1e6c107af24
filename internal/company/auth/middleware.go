package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// HTTPMiddleware requires a valid bearer token for every write under
// /companies. Reads and health probes stay public. An empty secret disables
// the check.
func HTTPMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip authentication for non-protected endpoints
			if jwtSecret == "" || !isProtectedRequest(r) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "Authentication credentials were not provided.")
				return
			}
			tokenString, err := bearerToken(authHeader)
			if err != nil {
				unauthorized(w, "Invalid token header.")
				return
			}

			// Validate token
			claims, err := validateToken(tokenString, jwtSecret)
			if err != nil {
				unauthorized(w, "Invalid token.")
				return
			}

			// Add claims to context
			ctx := context.WithValue(r.Context(), userContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isProtectedRequest(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return r.URL.Path == "/companies" || strings.HasPrefix(r.URL.Path, "/companies/")
	}
	return false
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="companies"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// This is a **mock authentication service**, designed to provide JWT tokens
// for the company service, simulating user authentication.
package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/coronavstech/companies/internal/company/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	defaultPort   = "8081"       // Default port for the authentication service
	defaultSecret = "jwt_secret" // Secret for signing JWT
)

// TokenResponse represents the response structure
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

type tokenIssuer struct {
	secret string
	ttl    time.Duration
	logger *zap.Logger
}

// tokenHandler generates a JWT and returns it in JSON response
func (i *tokenIssuer) tokenHandler(w http.ResponseWriter, r *http.Request) {
	// Simulate a user ID for the token
	userID := r.URL.Query().Get("user")
	if userID == "" {
		userID = "12345"
	}

	token, err := auth.GenerateToken(userID, i.secret, i.ttl)
	if err != nil {
		i.logger.Error("Failed to generate token", zap.Error(err))
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := TokenResponse{Token: token, ExpiresIn: int64(i.ttl.Seconds())}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		i.logger.Error("Failed to encode token", zap.Error(err))
	}
	i.logger.Info("Issued token", zap.String("sub", userID))
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger := zap.Must(zap.NewProduction()).Named("auth_service")
	defer func() { _ = logger.Sync() }()

	port := getenv("AUTH_PORT", defaultPort)
	issuer := &tokenIssuer{
		secret: getenv("JWT_SECRET", defaultSecret),
		ttl:    auth.DefaultTokenTTL,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/token", issuer.tokenHandler)
	r.Post("/token", issuer.tokenHandler)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("Authentication service running", zap.String("port", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Authentication service failed", zap.Error(err))
	}
}

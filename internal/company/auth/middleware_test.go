package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMiddleware(t *testing.T) {
	const secret = "test-secret"
	validToken, err := GenerateToken("test-user", secret, time.Hour)
	require.NoError(t, err)
	expiredToken, err := GenerateToken("test-user", secret, -time.Hour)
	require.NoError(t, err)
	foreignToken, err := GenerateToken("test-user", "other-secret", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		secret     string
		method     string
		path       string
		header     string
		wantStatus int
		wantDetail string
	}{
		{name: "list is public", secret: secret, method: http.MethodGet, path: "/companies/", wantStatus: http.StatusOK},
		{name: "get is public", secret: secret, method: http.MethodGet, path: "/companies/abc/", wantStatus: http.StatusOK},
		{name: "health is public", secret: secret, method: http.MethodPost, path: "/healthz", wantStatus: http.StatusOK},
		{
			name: "create without token", secret: secret, method: http.MethodPost, path: "/companies/",
			wantStatus: http.StatusUnauthorized, wantDetail: "Authentication credentials were not provided.",
		},
		{
			name: "create without trailing slash", secret: secret, method: http.MethodPost, path: "/companies",
			wantStatus: http.StatusUnauthorized, wantDetail: "Authentication credentials were not provided.",
		},
		{
			name: "malformed header", secret: secret, method: http.MethodDelete, path: "/companies/abc",
			header: "Token " + validToken, wantStatus: http.StatusUnauthorized, wantDetail: "Invalid token header.",
		},
		{
			name: "expired token", secret: secret, method: http.MethodPatch, path: "/companies/abc/",
			header: "Bearer " + expiredToken, wantStatus: http.StatusUnauthorized, wantDetail: "Invalid token.",
		},
		{
			name: "token signed with another secret", secret: secret, method: http.MethodPut, path: "/companies/abc/",
			header: "Bearer " + foreignToken, wantStatus: http.StatusUnauthorized, wantDetail: "Invalid token.",
		},
		{
			name: "valid token", secret: secret, method: http.MethodPost, path: "/companies/",
			header: "Bearer " + validToken, wantStatus: http.StatusOK,
		},
		{name: "disabled without secret", method: http.MethodDelete, path: "/companies/abc", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sawClaims bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				claims, ok := ClaimsFromContext(r.Context())
				sawClaims = ok && claims["sub"] == "test-user"
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			HTTPMiddleware(tt.secret)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantDetail != "" {
				var body map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, tt.wantDetail, body["detail"])
				assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
			}
			if tt.header != "" && tt.wantStatus == http.StatusOK {
				assert.True(t, sawClaims, "claims should reach the handler")
			}
		})
	}
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken("issuer-test", "s3cret", DefaultTokenTTL)
	require.NoError(t, err)

	claims, err := validateToken(token, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "issuer-test", claims["sub"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultTokenTTL), exp.Time, time.Minute)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testToken = "integration-test-token-0123456789"

func protectedHandler(t *testing.T, wantActor string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantActor, ActorIDFromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAdminToken(t *testing.T) {
	handler := RequireAdminToken(testToken)(protectedHandler(t, "ops_1"))

	req := httptest.NewRequest(http.MethodGet, "/admin/security/stats", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("X-Actor-ID", "ops_1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdminToken_Rejections(t *testing.T) {
	handler := RequireAdminToken(testToken)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	tests := []struct {
		name       string
		authHeader string
		actorID    string
		wantStatus int
	}{
		{"missing header", "", "ops_1", http.StatusUnauthorized},
		{"not bearer", "Basic abc", "ops_1", http.StatusUnauthorized},
		{"wrong token", "Bearer wrong", "ops_1", http.StatusUnauthorized},
		{"token prefix only", "Bearer " + testToken[:10], "ops_1", http.StatusUnauthorized},
		{"missing actor", "Bearer " + testToken, "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/security/stats", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			if tt.actorID != "" {
				req.Header.Set("X-Actor-ID", tt.actorID)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

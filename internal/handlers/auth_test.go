package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NujabesCode/itsmycolor-authgate/internal/models"
	"github.com/NujabesCode/itsmycolor-authgate/internal/services"
	pkghttp "github.com/NujabesCode/itsmycolor-authgate/pkg/http"
)

func performLogin(t *testing.T, service AuthServiceInterface, body string) *httptest.ResponseRecorder {
	t.Helper()

	handler := NewAuthHandler(service, &pkghttp.IPConfig{})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	handler.Login(rec, req)
	return rec
}

func TestLoginHandler_Success(t *testing.T) {
	service := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, sourceAddress string) (*services.LoginResult, error) {
			assert.Equal(t, "user@example.com", email)
			assert.Equal(t, "203.0.113.7", sourceAddress)
			return &services.LoginResult{AccountID: "acct_1", Email: email, Role: models.RoleUser}, nil
		},
	}

	rec := performLogin(t, service, `{"email":"user@example.com","password":"hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result services.LoginResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "acct_1", result.AccountID)
}

func TestLoginHandler_LockedAnswers423WithRetryAfter(t *testing.T) {
	until := time.Now().Add(10 * time.Minute)

	for _, err := range []error{
		models.NewAccountLockedError(until),
		models.NewIPLockedError(until),
	} {
		err := err
		service := &MockAuthService{
			LoginFunc: func(ctx context.Context, email, password, sourceAddress string) (*services.LoginResult, error) {
				return nil, err
			},
		}

		rec := performLogin(t, service, `{"email":"user@example.com","password":"hunter2"}`)
		require.Equal(t, http.StatusLocked, rec.Code)
		retryAfter := rec.Header().Get("Retry-After")
		require.NotEmpty(t, retryAfter)
	}
}

func TestLoginHandler_RejectionsCollapseToOne401(t *testing.T) {
	var bodies []string

	for _, err := range []error{
		models.ErrInvalidCredential,
		models.ErrNoPasswordSet,
		models.ErrAccountInactive,
	} {
		err := err
		service := &MockAuthService{
			LoginFunc: func(ctx context.Context, email, password, sourceAddress string) (*services.LoginResult, error) {
				return nil, err
			},
		}

		rec := performLogin(t, service, `{"email":"user@example.com","password":"hunter2"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		bodies = append(bodies, rec.Body.String())
	}

	// Byte-identical responses regardless of the internal rejection.
	assert.Equal(t, bodies[0], bodies[1])
	assert.Equal(t, bodies[0], bodies[2])
}

func TestLoginHandler_InvalidBody(t *testing.T) {
	rec := performLogin(t, &MockAuthService{}, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginHandler_ValidationFailures(t *testing.T) {
	for _, body := range []string{
		`{"email":"","password":"hunter2"}`,
		`{"email":"not-an-email","password":"hunter2"}`,
		`{"email":"user@example.com","password":""}`,
	} {
		rec := performLogin(t, &MockAuthService{}, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

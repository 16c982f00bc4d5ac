package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/NujabesCode/itsmycolor-authgate/internal/models"
	"github.com/NujabesCode/itsmycolor-authgate/internal/services"
	pkghttp "github.com/NujabesCode/itsmycolor-authgate/pkg/http"
)

// AuthServiceInterface defines the interface for the authentication gate.
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password, sourceAddress string) (*services.LoginResult, error)
}

// AuthHandler handles authentication HTTP requests.
type AuthHandler struct {
	service  AuthServiceInterface
	ipConfig *pkghttp.IPConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service AuthServiceInterface, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		ipConfig: ipConfig,
	}
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login runs a credential check through the gate.
//
// Lock refusals answer 423 with a Retry-After header. Every other rejection
// the gate distinguishes internally (unknown email, wrong password, missing
// password, inactive account) collapses to one generic 401 here, so the
// response leaks nothing about which condition actually fired.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	sourceAddress := pkghttp.ExtractSourceAddress(r, h.ipConfig)

	result, err := h.service.Login(r.Context(), req.Email, req.Password, sourceAddress)
	if err != nil {
		var locked *models.LockedError
		switch {
		case errors.As(err, &locked):
			pkghttp.WriteLocked(w, locked.Until, "Too many failed attempts. Please try again later.")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Email and password are required")
		case errors.Is(err, models.ErrInvalidCredential),
			errors.Is(err, models.ErrNoPasswordSet),
			errors.Is(err, models.ErrAccountInactive):
			pkghttp.WriteUnauthorized(w, "Authentication failed")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, result)
}

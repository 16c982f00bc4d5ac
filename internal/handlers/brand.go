package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/NujabesCode/itsmycolor-authgate/internal/middleware"
	"github.com/NujabesCode/itsmycolor-authgate/internal/models"
	"github.com/NujabesCode/itsmycolor-authgate/internal/services"
	pkghttp "github.com/NujabesCode/itsmycolor-authgate/pkg/http"
)

// BrandServiceInterface defines the owner-side brand operations.
type BrandServiceInterface interface {
	Submit(ctx context.Context, owner *models.Account, name string) (*models.Brand, error)
	Resubmit(ctx context.Context, owner *models.Account, brandID string) (*models.Brand, error)
	ListOwn(ctx context.Context, ownerAccountID string) ([]*models.Brand, error)
}

// BrandAccessServiceInterface answers the seller-console gate.
type BrandAccessServiceInterface interface {
	CanAccessSellerConsole(ctx context.Context, account *models.Account) (services.AccessDecision, error)
}

// SellerHandler handles the seller-facing brand endpoints. All of them run
// behind RequireAccount, so the calling account is always on the context.
type SellerHandler struct {
	brands BrandServiceInterface
	access BrandAccessServiceInterface
}

// NewSellerHandler creates a new SellerHandler.
func NewSellerHandler(brands BrandServiceInterface, access BrandAccessServiceInterface) *SellerHandler {
	return &SellerHandler{
		brands: brands,
		access: access,
	}
}

// SubmitBrandRequest represents the request body for brand submission.
type SubmitBrandRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

// BrandResponse represents a brand in HTTP responses.
type BrandResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func brandToResponse(brand *models.Brand) *BrandResponse {
	return &BrandResponse{
		ID:        brand.ID,
		Name:      brand.Name,
		Status:    string(brand.Status),
		CreatedAt: brand.CreatedAt.Format(time.RFC3339),
		UpdatedAt: brand.UpdatedAt.Format(time.RFC3339),
	}
}

// ConsoleAccess reports whether the caller may use the seller console,
// including every reason that currently blocks them.
func (h *SellerHandler) ConsoleAccess(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	decision, err := h.access.CanAccessSellerConsole(r.Context(), account)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, decision)
}

// SubmitBrand registers a new brand for review.
func (h *SellerHandler) SubmitBrand(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req SubmitBrandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	brand, err := h.brands.Submit(r.Context(), account, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteForbidden(w, "Brand submission requires the brand manager role")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Brand name is required")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "A brand with this name already exists")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, brandToResponse(brand))
}

// ResubmitBrand moves one of the caller's brands from resubmission-requested
// back into review.
func (h *SellerHandler) ResubmitBrand(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	brandID := chi.URLParam(r, "id")
	if brandID == "" {
		pkghttp.WriteBadRequest(w, "Brand ID is required")
		return
	}

	brand, err := h.brands.Resubmit(r.Context(), account, brandID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Brand not found")
		case errors.Is(err, models.ErrInvalidTransition):
			pkghttp.WriteConflict(w, "Brand is not awaiting resubmission")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Brand status changed concurrently, please retry")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, brandToResponse(brand))
}

// ListBrands returns the caller's brands, newest first.
func (h *SellerHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	brands, err := h.brands.ListOwn(r.Context(), account.ID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	responses := make([]*BrandResponse, 0, len(brands))
	for _, brand := range brands {
		responses = append(responses, brandToResponse(brand))
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"brands": responses})
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/NujabesCode/itsmycolor-authgate/internal/middleware"
	"github.com/NujabesCode/itsmycolor-authgate/internal/models"
	"github.com/NujabesCode/itsmycolor-authgate/internal/services"
	pkghttp "github.com/NujabesCode/itsmycolor-authgate/pkg/http"
)

// AdminServiceInterface defines the operator lock and dashboard operations.
type AdminServiceInterface interface {
	ClearAccountLock(ctx context.Context, actorID, accountID string) error
	ClearIPLock(ctx context.Context, actorID, address string) error
	ClearAllIPLocks(ctx context.Context, actorID string) int
	GetAuditFeed(ctx context.Context, eventType string, limit int) (*services.AuditFeed, error)
	GetSecurityStats(ctx context.Context) (*services.SecurityStats, error)
}

// BrandReviewInterface is the administrator half of the brand state machine.
type BrandReviewInterface interface {
	SetStatus(ctx context.Context, actorID, brandID string, target models.BrandStatus) (*models.Brand, error)
}

// AdminHandler handles the operator surface. All routes run behind
// RequireAdminToken, which guarantees an actor id on the context.
type AdminHandler struct {
	admin  AdminServiceInterface
	brands BrandReviewInterface
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admin AdminServiceInterface, brands BrandReviewInterface) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		brands: brands,
	}
}

// UnlockAccount clears an account lock and resets its failure counter.
func (h *AdminHandler) UnlockAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		pkghttp.WriteBadRequest(w, "Account ID is required")
		return
	}

	actorID := middleware.ActorIDFromContext(r.Context())
	if err := h.admin.ClearAccountLock(r.Context(), actorID, accountID); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Account not found")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearIPLock removes the lock record for one source address.
func (h *AdminHandler) ClearIPLock(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if address == "" {
		pkghttp.WriteBadRequest(w, "Address is required")
		return
	}

	actorID := middleware.ActorIDFromContext(r.Context())
	if err := h.admin.ClearIPLock(r.Context(), actorID, address); err != nil {
		switch {
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Address is required")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearAllIPLocks drops every source-address lock record.
func (h *AdminHandler) ClearAllIPLocks(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.ActorIDFromContext(r.Context())
	removed := h.admin.ClearAllIPLocks(r.Context(), actorID)

	pkghttp.WriteJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// SetBrandStatusRequest represents the request body for a review decision.
type SetBrandStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SetBrandStatus applies a review decision to a brand.
func (h *AdminHandler) SetBrandStatus(w http.ResponseWriter, r *http.Request) {
	brandID := chi.URLParam(r, "id")
	if brandID == "" {
		pkghttp.WriteBadRequest(w, "Brand ID is required")
		return
	}

	var req SetBrandStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	// Unknown status strings are rejected here, before any state is read.
	target, err := models.ParseBrandStatus(req.Status)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Unknown brand status")
		return
	}

	actorID := middleware.ActorIDFromContext(r.Context())
	brand, err := h.brands.SetStatus(r.Context(), actorID, brandID, target)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Brand not found")
		case errors.Is(err, models.ErrInvalidTransition):
			pkghttp.WriteConflict(w, err.Error())
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Brand status changed concurrently, please retry")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, brandToResponse(brand))
}

// AuditFeed returns the newest audit entries for one event type.
func (h *AdminHandler) AuditFeed(w http.ResponseWriter, r *http.Request) {
	eventType := r.URL.Query().Get("event_type")
	if eventType == "" {
		pkghttp.WriteBadRequest(w, "event_type query parameter is required")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	feed, err := h.admin.GetAuditFeed(r.Context(), eventType, limit)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Unknown audit event type")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, feed)
}

// SecurityStats returns the operator dashboard snapshot.
func (h *AdminHandler) SecurityStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.GetSecurityStats(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, stats)
}

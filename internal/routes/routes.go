package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/NujabesCode/itsmycolor-authgate/internal/database"
	"github.com/NujabesCode/itsmycolor-authgate/internal/handlers"
	"github.com/NujabesCode/itsmycolor-authgate/internal/middleware"
	pkghttp "github.com/NujabesCode/itsmycolor-authgate/pkg/http"
)

// Config carries the route-level settings.
type Config struct {
	AdminAPIToken   string
	LoginRateLimit  int
	LoginRateWindow time.Duration
	IPConfig        *pkghttp.IPConfig
}

// RegisterRoutes registers all application routes.
func RegisterRoutes(
	router chi.Router,
	cfg Config,
	authHandler *handlers.AuthHandler,
	sellerHandler *handlers.SellerHandler,
	adminHandler *handlers.AdminHandler,
	accounts middleware.AccountGetter,
	db *database.DB,
) {
	router.Get("/health", healthHandler(db))

	// Public: the login gate, behind the edge rate limit.
	router.With(middleware.LoginRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow, cfg.IPConfig)).
		Post("/auth/login", authHandler.Login)

	// Seller surface: identity resolved from the session layer's header.
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAccount(accounts))

		r.Get("/seller/console-access", sellerHandler.ConsoleAccess)
		r.Get("/seller/brands", sellerHandler.ListBrands)
		r.Post("/seller/brands", sellerHandler.SubmitBrand)
		r.Post("/seller/brands/{id}/resubmit", sellerHandler.ResubmitBrand)
	})

	// Operator surface: static bearer token, attributed actor.
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(cfg.AdminAPIToken))

		r.Post("/admin/accounts/{id}/unlock", adminHandler.UnlockAccount)
		r.Delete("/admin/ip-locks/{address}", adminHandler.ClearIPLock)
		r.Delete("/admin/ip-locks", adminHandler.ClearAllIPLocks)
		r.Put("/admin/brands/{id}/status", adminHandler.SetBrandStatus)
		r.Get("/admin/audit", adminHandler.AuditFeed)
		r.Get("/admin/security/stats", adminHandler.SecurityStats)
	})
}

func healthHandler(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(r.Context()); err != nil {
			pkghttp.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

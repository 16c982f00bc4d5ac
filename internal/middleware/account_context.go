package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/NujabesCode/itsmycolor-authgate/internal/models"
	pkghttp "github.com/NujabesCode/itsmycolor-authgate/pkg/http"
)

const accountKey contextKey = "account"

// AccountGetter loads an account by id.
type AccountGetter interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
}

// RequireAccount resolves the calling account from the X-Account-ID header
// set by the session layer in front of this service, and loads the full
// record into the request context. Requests without a resolvable account get
// a 401 before any handler runs.
func RequireAccount(accounts AccountGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID := strings.TrimSpace(r.Header.Get("X-Account-ID"))
			if accountID == "" {
				pkghttp.WriteUnauthorized(w, "Authentication required")
				return
			}

			account, err := accounts.GetByID(r.Context(), accountID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteUnauthorized(w, "Authentication required")
					return
				}
				pkghttp.WriteInternalError(w, "Internal server error")
				return
			}

			if !account.IsActive {
				pkghttp.WriteUnauthorized(w, "Authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), accountKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccountFromContext returns the account set by RequireAccount, or nil.
func AccountFromContext(ctx context.Context) *models.Account {
	if account, ok := ctx.Value(accountKey).(*models.Account); ok {
		return account
	}
	return nil
}

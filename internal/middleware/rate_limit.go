package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	pkghttp "github.com/NujabesCode/itsmycolor-authgate/pkg/http"
)

// LoginRateLimiter is the edge throttle on the login endpoint. It sits in
// front of the source-address lock: the lock is the security control with its
// own thresholds and audit trail, this is plain request-volume protection so
// a flood never reaches bcrypt.
func LoginRateLimiter(requestLimit int, window time.Duration, ipConfig *pkghttp.IPConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		requestLimit,
		window,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return pkghttp.ExtractSourceAddress(r, ipConfig), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "Too many requests. Please try again later.")
		}),
	)
}

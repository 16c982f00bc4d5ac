package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	pkghttp "github.com/NujabesCode/itsmycolor-authgate/pkg/http"
)

type contextKey string

const actorIDKey contextKey = "actor_id"

// RequireAdminToken guards the operator surface with a static bearer token.
// The comparison is constant time so the token cannot be recovered byte by
// byte through timing. Every admin request must also name its operator via
// X-Actor-ID; anonymous privileged actions are not accepted.
func RequireAdminToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			presented, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || presented == "" {
				pkghttp.WriteUnauthorized(w, "Missing or malformed authorization header")
				return
			}

			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				pkghttp.WriteUnauthorized(w, "Invalid token")
				return
			}

			actorID := strings.TrimSpace(r.Header.Get("X-Actor-ID"))
			if actorID == "" {
				pkghttp.WriteBadRequest(w, "X-Actor-ID header is required")
				return
			}

			ctx := context.WithValue(r.Context(), actorIDKey, actorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorIDFromContext returns the operator identity set by RequireAdminToken.
func ActorIDFromContext(ctx context.Context) string {
	if actorID, ok := ctx.Value(actorIDKey).(string); ok {
		return actorID
	}
	return ""
}

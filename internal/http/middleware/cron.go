package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/loomwork/retention/internal/httputil"
)

// CronAuthConfig holds cron endpoint authentication configuration.
type CronAuthConfig struct {
	Secret string
	// Production gates the unauthenticated GET variant: outside
	// production the same jobs are reachable via GET without the secret
	// for manual testing.
	Production bool
}

// CronAuth guards scheduler-triggered endpoints. POST requires
// `Authorization: Bearer <CRON_SECRET>`. A missing secret configuration
// is a deployment error and fails with 500, not 401: an unauthenticated
// 401 would read as a caller problem and mask the misconfiguration.
func CronAuth(cfg CronAuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet && !cfg.Production {
				next.ServeHTTP(w, r)
				return
			}

			if cfg.Secret == "" {
				httputil.CodedError(w, http.StatusInternalServerError, "CONFIGURATION_ERROR", "CRON_SECRET is not configured")
				return
			}

			authHeader := r.Header.Get("Authorization")
			var token string
			if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				token = parts[1]
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(cfg.Secret)) != 1 {
				httputil.CodedError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid cron secret")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

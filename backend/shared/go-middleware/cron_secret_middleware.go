package middleware

import (
	"net/http"

	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
)

// CronSecretMiddleware gates out-of-band scheduler triggers behind the
// x-cron-secret header. An empty configured secret rejects every call.
func CronSecretMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				utils.RespondErrorWithCode(
					w, http.StatusForbidden, utils.ErrCodeForbidden, "Cron trigger disabled", nil,
				)
				return
			}
			if !utils.SecureCompare(r.Header.Get(utils.CronSecretHeader), secret) {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid cron secret", nil,
				)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

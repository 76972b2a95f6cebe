package middleware

import (
	"net/http"

	"github.com/payment-reminder-api/internal/domain"
)

// The gates read the session snapshot placed in context by Auth. They do not
// hit the user store: an approval or deactivation made after login takes
// effect once the snapshot is refreshed.

// RequireAdmin allows only sessions whose snapshot carries the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if sess.Role != domain.RoleAdmin {
			writeJSONError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireApproved blocks accounts that have not been approved by an admin.
func RequireApproved(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !sess.IsApproved {
			writeJSONError(w, http.StatusForbidden, "account approval required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireActive blocks deactivated accounts.
func RequireActive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !sess.IsActive {
			writeJSONError(w, http.StatusForbidden, "account is inactive")
			return
		}
		next.ServeHTTP(w, r)
	})
}

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/payment-reminder-api/internal/domain"
)

type contextKey string

const SessionKey contextKey = "session"

// SessionCookie is the name of the HttpOnly cookie carrying the session token.
const SessionCookie = "session_token"

type sessionStore interface {
	Get(ctx context.Context, token string) (*domain.Session, error)
	Touch(ctx context.Context, token string) error
}

// Auth returns middleware that resolves the session token (cookie or Bearer
// header), loads the identity snapshot, re-arms the rolling expiry, and
// injects the snapshot into the request context.
func Auth(sessions sessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			sess, err := sessions.Get(r.Context(), token)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if err := sessions.Touch(r.Context(), token); err != nil {
				slog.Warn("failed to extend session expiry", "err", err)
			}
			ctx := context.WithValue(r.Context(), SessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext extracts the identity snapshot from the request context.
func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	s, ok := ctx.Value(SessionKey).(*domain.Session)
	return s, ok
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

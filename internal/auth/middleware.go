package auth

import (
	"context"
	"net/http"

	"github.com/sakif/truassets/internal/model"
)

// CookieName is the session token cookie.
const CookieName = "token"

// contextKey keeps this package's context values private.
type contextKey string

const userKey contextKey = "user"

// SessionReader exposes the current session identity. *store.SessionStore
// implements it.
type SessionReader interface {
	Current() (model.AuthenticatedUser, bool)
}

// RequireAuth rejects the request with 401 unless the "token" cookie holds a
// valid token whose subject is the session's current user. On success the
// user is stored in the request context.
func RequireAuth(tokens *TokenService, sessions SessionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := authenticate(r, tokens, sessions)
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "valid authentication required")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// RequireAdmin must run after RequireAuth. It rejects non-admins with 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "unauthorized", "valid authentication required")
			return
		}
		if !u.IsAdmin() {
			writeAuthError(w, http.StatusForbidden, "forbidden", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u model.AuthenticatedUser) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the user set by RequireAuth.
func UserFromContext(ctx context.Context) (model.AuthenticatedUser, bool) {
	u, ok := ctx.Value(userKey).(model.AuthenticatedUser)
	return u, ok
}

func authenticate(r *http.Request, tokens *TokenService, sessions SessionReader) (model.AuthenticatedUser, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return model.AuthenticatedUser{}, false
	}
	c, err := tokens.Validate(cookie.Value)
	if err != nil {
		return model.AuthenticatedUser{}, false
	}
	u, ok := sessions.Current()
	if !ok || u.ID != c.UserID {
		return model.AuthenticatedUser{}, false
	}
	return u, true
}

// writeAuthError writes the same {"error","message"} body as the handler
// package, without importing it.
func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + code + `","message":"` + message + `"}` + "\n"))
}

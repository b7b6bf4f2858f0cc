package middleware

import (
	"context"
	"net/http"
	"strings"

	"booking-api/internal/auth"
)

type ctxKey string

const UserIDKey ctxKey = "uid"

// UserID returns the authenticated user id from the request context, or ""
// for anonymous requests.
func UserID(ctx context.Context) string {
	if uid, ok := ctx.Value(UserIDKey).(string); ok {
		return uid
	}
	return ""
}

// Auth rejects requests without a valid bearer token and puts the user id
// on the context.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := userIDFromRequest(r, secret)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), UserIDKey, uid)))
		})
	}
}

// OptionalAuth sets the user id when a valid token is present but lets
// anonymous requests through. Used by the open availability endpoint.
func OptionalAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if uid, ok := userIDFromRequest(r, secret); ok {
				r = r.WithContext(context.WithValue(r.Context(), UserIDKey, uid))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// token from Authorization: Bearer <jwt>, falling back to the access_token
// cookie set at login
func userIDFromRequest(r *http.Request, secret string) (string, bool) {
	raw := ""
	if h := r.Header.Get("Authorization"); h != "" {
		raw = strings.TrimPrefix(h, "Bearer ")
	}
	if raw == "" {
		if c, err := r.Cookie("access_token"); err == nil {
			raw = c.Value
		}
	}
	if raw == "" {
		return "", false
	}
	claims, err := auth.ParseToken(raw, secret)
	if err != nil {
		return "", false
	}
	return claims.UserID, true
}

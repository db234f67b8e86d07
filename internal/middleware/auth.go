package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// TokenResolver maps a bearer token to the email it was issued to.
// Satisfied by *session.Store.
type TokenResolver interface {
	Resolve(token string) (string, error)
}

type contextKey struct{ name string }

var userEmailKey = contextKey{"user_email"}

// UserEmail returns the authenticated user's email from the request context,
// or "" when the request never passed through RequireAuth.
func UserEmail(ctx context.Context) string {
	email, _ := ctx.Value(userEmailKey).(string)
	return email
}

// RequireAuth rejects requests without a valid "Authorization: Bearer" token
// and stores the resolved user email in the request context for handlers.
func RequireAuth(sessions TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, "missing bearer token")
				return
			}
			email, err := sessions.Resolve(token)
			if err != nil {
				unauthorized(w, "invalid or expired session")
				return
			}
			ctx := context.WithValue(r.Context(), userEmailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": "unauthorized", "message": message},
	})
}

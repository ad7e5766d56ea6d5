package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/UgurOz1/portfolyo/internal/models"
)

// SessionCookie carries the signed session token.
const SessionCookie = "session"

type contextKey string

const (
	identityKey contextKey = "identity"
	visitorKey  contextKey = "visitor"
)

// TokenParser verifies a session token.
type TokenParser interface {
	Parse(token string) (*models.Identity, error)
}

// Identity resolves the caller from the session cookie or a Bearer header.
// Requests without a valid token continue as signed out; handlers decide what
// a signed-out caller may do.
func Identity(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			identity, err := parser.Parse(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func sessionToken(r *http.Request) string {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom returns the caller's identity, or nil when signed out.
func IdentityFrom(ctx context.Context) *models.Identity {
	identity, _ := ctx.Value(identityKey).(*models.Identity)
	return identity
}

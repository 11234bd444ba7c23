package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nitinder-api/internal/domain"
	jwtinfra "github.com/nitinder-api/internal/infrastructure/jwt"
)

type contextKey string

const ClaimsKey contextKey = "claims"

type tokenVerifier interface {
	Verify(tokenStr string) (*jwtinfra.Claims, error)
}

// SessionValidator rejects tokens whose session was revoked.
type SessionValidator interface {
	Validate(ctx context.Context, sessionID, userID string) error
}

// Auth returns middleware that validates the Bearer JWT and injects claims into context.
// When sessions is non-nil the token's session must still be active.
func Auth(provider tokenVerifier, sessions SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			claims, err := provider.Verify(tokenStr)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			if sessions != nil {
				if err := sessions.Validate(r.Context(), claims.SessionID, claims.UserID); err != nil {
					if errors.Is(err, domain.ErrUnauthorized) {
						writeJSONError(w, http.StatusUnauthorized, "session expired")
						return
					}
					slog.Error("session lookup failed", "session_id", claims.SessionID, "err", err)
					writeJSONError(w, http.StatusInternalServerError, "internal server error")
					return
				}
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*jwtinfra.Claims)
	return c, ok
}

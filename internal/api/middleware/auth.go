package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/ccpubsub/internal/api/apierr"
	"github.com/mcoot/ccpubsub/internal/model"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// TokenVerifier checks bearer tokens
type TokenVerifier interface {
	Verify(token string) (model.Claims, error)
}

// Auth creates bearer-token authentication middleware
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the bearer token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// GetClaims returns the authenticated claims from the request context
func GetClaims(ctx context.Context) (model.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(model.Claims)
	return claims, ok
}

// MustGetClaims returns the authenticated claims or panics
func MustGetClaims(ctx context.Context) model.Claims {
	claims, ok := GetClaims(ctx)
	if !ok {
		panic("no claims in context - auth middleware not applied?")
	}
	return claims
}

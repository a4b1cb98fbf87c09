package api

import (
	"context"
	"net/http"

	"github.com/haruplan/haruplan/internal/api/respond"
	"github.com/haruplan/haruplan/internal/auth"
)

type ctxKey int

const claimsKey ctxKey = iota

// RequireAuth verifies the bearer token and stores its claims on the
// request context. Handlers behind it can rely on UserID being present.
func RequireAuth(issuer *auth.TokenIssuer, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.ExtractBearer(r)
		if err != nil {
			respond.WriteUnauthorized(w, err.Error())
			return
		}
		claims, err := issuer.Verify(token)
		if err != nil {
			respond.WriteUnauthorized(w, err.Error())
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	}
}

// UserID returns the authenticated user ID from the request context.
func UserID(r *http.Request) string {
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims.Subject
	}
	return ""
}

// UserTimeZone returns the authenticated user's time zone claim, empty
// when absent.
func UserTimeZone(r *http.Request) string {
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims.TimeZone
	}
	return ""
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/pdacosta/banco-ledger/internal/auth"
	"github.com/pdacosta/banco-ledger/internal/handler"
)

func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			claims, err := auth.ValidateToken(token, secret)
			if err != nil {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			ctx := auth.ContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates the admin area: the authenticated email must match the
// configured admin identity. Legacy single-admin policy, not a role system.
func RequireAdmin(adminEmail string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, ok := auth.EmailFromContext(r.Context())
			if !ok || email != adminEmail {
				handler.RespondAppError(w, handler.ErrForbidden, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

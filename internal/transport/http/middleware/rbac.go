package middleware

import (
	"net/http"

	"github.com/baechuer/account-service/internal/application/access"
	"github.com/baechuer/account-service/internal/domain"
)

// RequireRole admits the request only if the session role is in required.
// It must run after Authenticate.
func RequireRole(required domain.RoleSet, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var claims *domain.Claims
			if c, ok := ClaimsFromContext(r.Context()); ok {
				claims = &c
			}

			if err := access.Authorize(claims, required); err != nil {
				writeErr(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

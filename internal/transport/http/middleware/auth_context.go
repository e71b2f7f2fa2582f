package middleware

import (
	"context"

	"github.com/baechuer/account-service/internal/domain"
)

type ctxKey string

const ctxClaims ctxKey = "claims"

func WithClaims(ctx context.Context, c domain.Claims) context.Context {
	return context.WithValue(ctx, ctxClaims, c)
}

// ClaimsFromContext returns the verified session claims, if Authenticate ran.
func ClaimsFromContext(ctx context.Context) (domain.Claims, bool) {
	c, ok := ctx.Value(ctxClaims).(domain.Claims)
	return c, ok && c.Subject != ""
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		return "", false
	}
	return c.Subject, true
}

package auth

import (
	"context"
	"time"

	"github.com/baechuer/account-service/internal/domain"
)

// UserFinder is the slice of the account store login needs.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

type TokenSigner interface {
	Sign(c domain.Claims, ttl time.Duration) (string, error)
}

type Auditor interface {
	LoginSuccess(ctx context.Context, userID, email string)
	LoginFailed(ctx context.Context, email, reason string)
}

package account

import (
	"context"
	"time"

	"github.com/baechuer/account-service/internal/application/notify"
	"github.com/baechuer/account-service/internal/domain"
)

/*
UserRepo
--------
Persistence port for accounts.

Lookups and mutations keyed by id or email report domain.ErrUserNotFound on a
miss. Create reports domain.ErrEmailAlreadyExists when the email is taken.
The Consume* methods match on email AND the stored token and clear it in one
atomic step; a miss (wrong, superseded or already used token) is
domain.ErrTokenInvalid.
*/
type UserRepo interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)

	ConsumeVerificationToken(ctx context.Context, email, token string) error
	SetResetToken(ctx context.Context, email, token string) error
	ConsumeResetToken(ctx context.Context, email, token, newHash string) error

	SetRole(ctx context.Context, id string, role domain.Role) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

type TokenSigner interface {
	Sign(c domain.Claims, ttl time.Duration) (string, error)
	VerifyPurpose(token string, want domain.TokenPurpose) (domain.Claims, error)
}

// Notifier is the fire-and-forget mail hand-off (notify.Dispatcher).
type Notifier interface {
	Dispatch(msg notify.Message)
}

// Auditor records account business events (audit.Logger).
type Auditor interface {
	Registered(ctx context.Context, userID, email, role string)
	EmailVerified(ctx context.Context, email string)
	PasswordResetRequested(ctx context.Context, email string)
	PasswordReset(ctx context.Context, email string)
	RoleChanged(ctx context.Context, targetID, oldRole, newRole string)
	ActiveChanged(ctx context.Context, targetID string, active bool)
	AccountDeleted(ctx context.Context, targetID string)
}

package audit

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	pkgctx "github.com/baechuer/account-service/internal/pkg/context"
)

// Logger writes account business events as zerolog lines tagged audit=true.
type Logger struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

func (l *Logger) Registered(ctx context.Context, userID, email, role string) {
	l.log.Info().
		Str("action", "registered").
		Str("user_id", userID).
		Str("email", maskEmail(email)).
		Str("role", role).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("Account registered")
}

func (l *Logger) EmailVerified(ctx context.Context, email string) {
	l.log.Info().
		Str("action", "email_verified").
		Str("email", maskEmail(email)).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("Email verified")
}

func (l *Logger) LoginSuccess(ctx context.Context, userID, email string) {
	l.log.Info().
		Str("action", "login_success").
		Str("user_id", userID).
		Str("email", maskEmail(email)).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("User logged in successfully")
}

func (l *Logger) LoginFailed(ctx context.Context, email, reason string) {
	l.log.Warn().
		Str("action", "login_failed").
		Str("email", maskEmail(email)).
		Str("reason", reason).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("Login attempt failed")
}

func (l *Logger) PasswordResetRequested(ctx context.Context, email string) {
	l.log.Info().
		Str("action", "password_reset_requested").
		Str("email", maskEmail(email)).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("Password reset requested")
}

func (l *Logger) PasswordReset(ctx context.Context, email string) {
	l.log.Info().
		Str("action", "password_reset").
		Str("email", maskEmail(email)).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("Password reset completed")
}

func (l *Logger) RoleChanged(ctx context.Context, targetID, oldRole, newRole string) {
	l.log.Warn().
		Str("action", "role_changed").
		Str("target_user_id", targetID).
		Str("old_role", oldRole).
		Str("new_role", newRole).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("User role changed")
}

func (l *Logger) ActiveChanged(ctx context.Context, targetID string, active bool) {
	action := "account_deactivated"
	if active {
		action = "account_activated"
	}
	l.log.Warn().
		Str("action", action).
		Str("target_user_id", targetID).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("Account status changed")
}

func (l *Logger) AccountDeleted(ctx context.Context, targetID string) {
	l.log.Warn().
		Str("action", "account_deleted").
		Str("target_user_id", targetID).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("Account deleted")
}

// maskEmail keeps the first two characters of the local part and the domain.
func maskEmail(email string) string {
	if len(email) < 5 {
		return "***"
	}
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return email[:2] + "***"
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}

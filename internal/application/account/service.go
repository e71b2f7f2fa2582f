package account

import (
	"context"
	"time"
)

type Service struct {
	users    UserRepo
	hasher   PasswordHasher
	signer   TokenSigner
	notifier Notifier
	audit    Auditor

	verifyTTL time.Duration
	resetTTL  time.Duration
	verifyURL func(token string) string
	resetURL  func(token string) string
}

type Config struct {
	VerifyTokenTTL time.Duration
	ResetTokenTTL  time.Duration
	// Build the links embedded in outgoing mail.
	VerifyURL func(token string) string
	ResetURL  func(token string) string
}

func NewService(
	users UserRepo,
	hasher PasswordHasher,
	signer TokenSigner,
	notifier Notifier,
	cfg Config,
) *Service {
	verifyTTL := cfg.VerifyTokenTTL
	if verifyTTL <= 0 {
		verifyTTL = time.Hour
	}
	resetTTL := cfg.ResetTokenTTL
	if resetTTL <= 0 {
		resetTTL = 30 * time.Minute
	}
	verifyURL := cfg.VerifyURL
	if verifyURL == nil {
		verifyURL = func(token string) string { return "/auth/verify/" + token }
	}
	resetURL := cfg.ResetURL
	if resetURL == nil {
		resetURL = func(token string) string { return "/auth/reset-password/" + token }
	}

	return &Service{
		users:     users,
		hasher:    hasher,
		signer:    signer,
		notifier:  notifier,
		audit:     nopAuditor{},
		verifyTTL: verifyTTL,
		resetTTL:  resetTTL,
		verifyURL: verifyURL,
		resetURL:  resetURL,
	}
}

func (s *Service) WithAudit(a Auditor) *Service {
	if a != nil {
		s.audit = a
	}
	return s
}

type nopAuditor struct{}

func (nopAuditor) Registered(context.Context, string, string, string)  {}
func (nopAuditor) EmailVerified(context.Context, string)               {}
func (nopAuditor) PasswordResetRequested(context.Context, string)      {}
func (nopAuditor) PasswordReset(context.Context, string)               {}
func (nopAuditor) RoleChanged(context.Context, string, string, string) {}
func (nopAuditor) ActiveChanged(context.Context, string, bool)         {}
func (nopAuditor) AccountDeleted(context.Context, string)              {}

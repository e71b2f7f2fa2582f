package auth

import (
	"context"
	"sync"
	"time"
)

type Service struct {
	users  UserFinder
	hasher PasswordHasher
	signer TokenSigner
	audit  Auditor

	sessionTTL      time.Duration
	requireVerified bool

	// Compared against when the email is unknown, so both failure paths
	// spend one bcrypt comparison.
	dummyOnce sync.Once
	dummyHash string
}

type Config struct {
	SessionTTL time.Duration
	// RequireVerified rejects logins of accounts that have not verified
	// their email.
	RequireVerified bool
}

func NewService(users UserFinder, hasher PasswordHasher, signer TokenSigner, cfg Config) *Service {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 60 * time.Minute
	}
	return &Service{
		users:           users,
		hasher:          hasher,
		signer:          signer,
		audit:           nopAuditor{},
		sessionTTL:      ttl,
		requireVerified: cfg.RequireVerified,
	}
}

func (s *Service) WithAudit(a Auditor) *Service {
	if a != nil {
		s.audit = a
	}
	return s
}

// LoginResult is the token output for handlers/DTO mapping.
type LoginResult struct {
	AccessToken string
	TokenType   string // "Bearer"
	ExpiresIn   int64  // seconds
}

type nopAuditor struct{}

func (nopAuditor) LoginSuccess(context.Context, string, string) {}
func (nopAuditor) LoginFailed(context.Context, string, string)  {}

func (s *Service) burnCompare(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("dummy-password-for-timing")
	})
	if s.dummyHash != "" {
		_ = s.hasher.Compare(s.dummyHash, password)
	}
}

package auth

import (
	"context"
	"strings"

	"github.com/baechuer/account-service/internal/domain"
)

// Authenticate checks credentials. Unknown email and wrong password both
// yield invalid_credentials. Inactive (and, if configured, unverified)
// accounts are only reported after the password matched.
func (s *Service) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		s.audit.LoginFailed(ctx, email, "missing_credentials")
		return domain.User{}, domain.ErrInvalidCredentials()
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			s.burnCompare(password)
			s.audit.LoginFailed(ctx, email, "unknown_email")
			return domain.User{}, domain.ErrInvalidCredentials()
		}
		return domain.User{}, err
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		s.audit.LoginFailed(ctx, email, "wrong_password")
		return domain.User{}, domain.ErrInvalidCredentials()
	}

	if !u.Active {
		s.audit.LoginFailed(ctx, email, "account_inactive")
		return domain.User{}, domain.ErrAccountInactive()
	}
	if s.requireVerified && !u.Verified {
		s.audit.LoginFailed(ctx, email, "email_not_verified")
		return domain.User{}, domain.ErrEmailNotVerified()
	}

	return u, nil
}

// Login authenticates and issues a session token carrying id, email and role.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return LoginResult{}, err
	}

	tok, err := s.signer.Sign(domain.Claims{
		Subject: u.ID,
		Email:   u.Email,
		Role:    u.Role,
		Purpose: domain.PurposeSession,
	}, s.sessionTTL)
	if err != nil {
		return LoginResult{}, err
	}

	s.audit.LoginSuccess(ctx, u.ID, u.Email)
	return LoginResult{
		AccessToken: tok,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.sessionTTL.Seconds()),
	}, nil
}

package account

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/baechuer/account-service/internal/application/notify"
	"github.com/baechuer/account-service/internal/domain"
)

// Register creates an unverified account and mails its verification token.
// The email existence check is a fast path only; the store's unique
// constraint decides concurrent registrations.
func (s *Service) Register(ctx context.Context, email, password string, role domain.Role) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if password == "" {
		return domain.User{}, domain.ErrMissingField("password")
	}
	if !domain.IsValidRole(string(role)) {
		return domain.User{}, domain.ErrInvalidRole(string(role))
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	} else if !domain.Is(err, "user_not_found") {
		return domain.User{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}

	id := uuid.NewString()
	token, err := s.signer.Sign(domain.Claims{
		Subject: id,
		Email:   email,
		Purpose: domain.PurposeVerifyEmail,
	}, s.verifyTTL)
	if err != nil {
		return domain.User{}, err
	}

	created, err := s.users.Create(ctx, domain.User{
		ID:                id,
		Email:             email,
		PasswordHash:      hash,
		Verified:          false,
		VerificationToken: token,
		Role:              role,
		Active:            true,
	})
	if err != nil {
		return domain.User{}, err
	}

	s.notifier.Dispatch(notify.VerifyEmail(created.Email, token, s.verifyURL(token)))
	s.audit.Registered(ctx, created.ID, created.Email, string(created.Role))

	return created, nil
}

// VerifyAccount marks the token's account verified and clears the stored
// token, so the same token cannot be used twice.
func (s *Service) VerifyAccount(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrTokenInvalid()
	}

	claims, err := s.signer.VerifyPurpose(token, domain.PurposeVerifyEmail)
	if err != nil {
		return domain.ErrTokenInvalid()
	}

	if err := s.users.ConsumeVerificationToken(ctx, claims.Email, token); err != nil {
		return err
	}

	s.audit.EmailVerified(ctx, claims.Email)
	return nil
}

package account

import (
	"context"
	"strings"

	"github.com/baechuer/account-service/internal/application/notify"
	"github.com/baechuer/account-service/internal/domain"
)

// RequestPasswordReset stores a fresh reset token on the account, replacing
// any earlier one, and mails it. The token is persisted before the mail is
// handed off so a delivered token is always redeemable.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.ErrMissingField("email")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.signer.Sign(domain.Claims{
		Subject: u.ID,
		Email:   u.Email,
		Purpose: domain.PurposePasswordReset,
	}, s.resetTTL)
	if err != nil {
		return err
	}

	if err := s.users.SetResetToken(ctx, u.Email, token); err != nil {
		return err
	}

	s.notifier.Dispatch(notify.PasswordReset(u.Email, token, s.resetURL(token)))
	s.audit.PasswordResetRequested(ctx, u.Email)
	return nil
}

// ResetPassword replaces the password of the account the token was issued
// for. Only the most recently issued reset token is accepted, and only once.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrTokenInvalid()
	}
	if newPassword == "" {
		return domain.ErrMissingField("newPassword")
	}

	claims, err := s.signer.VerifyPurpose(token, domain.PurposePasswordReset)
	if err != nil {
		return domain.ErrTokenInvalid()
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.ConsumeResetToken(ctx, claims.Email, token, hash); err != nil {
		return err
	}

	s.audit.PasswordReset(ctx, claims.Email)
	return nil
}

package account

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/baechuer/account-service/internal/domain"
)

// EnsureAdmin creates the bootstrap admin unless an account with that email
// already exists. Empty credentials skip seeding.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string, lg zerolog.Logger) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		lg.Warn().Msg("admin credentials not configured, skipping admin seed")
		return nil
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		lg.Info().Msg("admin account already present")
		return nil
	}
	if !domain.Is(err, "user_not_found") {
		return err
	}

	u, err := s.Register(ctx, email, password, domain.RoleAdmin)
	if err != nil {
		// lost a race with another instance
		if domain.Is(err, "email_already_exists") {
			return nil
		}
		return err
	}

	lg.Info().Str("user_id", u.ID).Msg("admin account seeded")
	return nil
}

package account

import (
	"context"
	"strings"

	"github.com/baechuer/account-service/internal/domain"
)

// RoleUpdate reports the outcome of UpdateRole. Changed is false when the
// account already had the requested role and nothing was written.
type RoleUpdate struct {
	User     domain.User
	Previous domain.Role
	Changed  bool
}

func (s *Service) UpdateRole(ctx context.Context, id, rawRole string) (RoleUpdate, error) {
	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return RoleUpdate{}, err
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return RoleUpdate{}, err
	}
	if u.Role == role {
		return RoleUpdate{User: u, Previous: u.Role, Changed: false}, nil
	}

	if err := s.users.SetRole(ctx, id, role); err != nil {
		return RoleUpdate{}, err
	}
	s.audit.RoleChanged(ctx, id, string(u.Role), string(role))

	prev := u.Role
	u.Role = role
	return RoleUpdate{User: u, Previous: prev, Changed: true}, nil
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrMissingField("id")
	}
	if err := s.users.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.audit.ActiveChanged(ctx, id, active)
	return nil
}

func (s *Service) Activate(ctx context.Context, id string) error {
	return s.SetActive(ctx, id, true)
}

func (s *Service) Deactivate(ctx context.Context, id string) error {
	return s.SetActive(ctx, id, false)
}

func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrMissingField("id")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.AccountDeleted(ctx, id)
	return nil
}

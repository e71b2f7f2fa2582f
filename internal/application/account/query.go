package account

import (
	"context"
	"strings"

	"github.com/baechuer/account-service/internal/domain"
)

func (s *Service) GetProfile(ctx context.Context, id string) (ProfileView, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ProjectProfile(u), nil
}

func (s *Service) GetDetailsByEmail(ctx context.Context, email string) (UserView, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return UserView{}, domain.ErrMissingField("email")
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return UserView{}, err
	}
	return ProjectUser(u), nil
}

// ListAll returns every account, oldest first.
func (s *Service) ListAll(ctx context.Context) ([]UserView, error) {
	us, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return ProjectUsers(us), nil
}

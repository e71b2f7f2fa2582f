package account

import "github.com/baechuer/account-service/internal/domain"

// UserView is the masked projection used for admin listings and lookups.
// Password hash and tokens never leave the service through it.
type UserView struct {
	ID       string      `json:"id"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	Verified bool        `json:"verified"`
	Active   bool        `json:"active"`
}

func ProjectUser(u domain.User) UserView {
	return UserView{
		ID:       u.ID,
		Email:    u.Email,
		Role:     u.Role,
		Verified: u.Verified,
		Active:   u.Active,
	}
}

func ProjectUsers(us []domain.User) []UserView {
	out := make([]UserView, 0, len(us))
	for _, u := range us {
		out = append(out, ProjectUser(u))
	}
	return out
}

// ProfileView is what an account sees of itself. The concrete type depends
// on the account's role.
type ProfileView interface {
	profileRole() domain.Role
}

// UserProfile is the self view of a regular user.
type UserProfile struct {
	ID       string      `json:"id"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	Verified bool        `json:"verified"`
}

// AdminProfile is the self view of an admin. It has no verified field.
type AdminProfile struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

func (p UserProfile) profileRole() domain.Role  { return p.Role }
func (p AdminProfile) profileRole() domain.Role { return p.Role }

func ProjectProfile(u domain.User) ProfileView {
	switch u.Role {
	case domain.RoleAdmin:
		return AdminProfile{ID: u.ID, Email: u.Email, Role: u.Role}
	default:
		return UserProfile{ID: u.ID, Email: u.Email, Role: u.Role, Verified: u.Verified}
	}
}

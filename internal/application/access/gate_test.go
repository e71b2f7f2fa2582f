package access

import (
	"testing"

	"github.com/baechuer/account-service/internal/domain"
)

func TestAuthorize(t *testing.T) {
	t.Parallel()

	session := func(role domain.Role) *domain.Claims {
		return &domain.Claims{Subject: "u1", Role: role, Purpose: domain.PurposeSession}
	}

	cases := []struct {
		name     string
		claims   *domain.Claims
		required domain.RoleSet
		code     string
	}{
		{"no claims", nil, domain.AnyRole, "token_missing"},
		{"verify token as session", &domain.Claims{Role: domain.RoleAdmin, Purpose: domain.PurposeVerifyEmail}, domain.AdminOnly, "token_invalid"},
		{"user on admin route", session(domain.RoleUser), domain.AdminOnly, "insufficient_role"},
		{"unknown role", session(domain.Role("guest")), domain.AnyRole, "insufficient_role"},
		{"admin on admin route", session(domain.RoleAdmin), domain.AdminOnly, ""},
		{"user on any route", session(domain.RoleUser), domain.AnyRole, ""},
		{"empty set denies", session(domain.RoleAdmin), domain.NewRoleSet(), "insufficient_role"},
	}

	for _, tc := range cases {
		err := Authorize(tc.claims, tc.required)
		if tc.code == "" {
			if err != nil {
				t.Fatalf("%s: expected allow, got %v", tc.name, err)
			}
			continue
		}
		if !domain.Is(err, tc.code) {
			t.Fatalf("%s: expected %s, got %v", tc.name, tc.code, err)
		}
	}
}

package domain

import "testing"

func TestIsValidRole(t *testing.T) {
	cases := []struct {
		role string
		ok   bool
	}{
		{"user", true},
		{"admin", true},
		{"moderator", false},
		{"", false},
		{"ADMIN", false},
	}
	for _, c := range cases {
		if IsValidRole(c.role) != c.ok {
			t.Fatalf("unexpected IsValidRole(%q)", c.role)
		}
	}
}

func TestParseRole_NormalizesInput(t *testing.T) {
	r, err := ParseRole("  ADMIN ")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if r != RoleAdmin {
		t.Fatalf("expected admin, got %q", r)
	}

	if _, err := ParseRole("root"); !Is(err, "invalid_role") {
		t.Fatalf("expected invalid_role, got %v", err)
	}
}

func TestRoleSet(t *testing.T) {
	if !AdminOnly.Contains(RoleAdmin) || AdminOnly.Contains(RoleUser) {
		t.Fatalf("AdminOnly membership wrong")
	}
	if !AnyRole.Contains(RoleUser) || !AnyRole.Contains(RoleAdmin) {
		t.Fatalf("AnyRole membership wrong")
	}
	if AnyRole.String() != "admin,user" {
		t.Fatalf("unexpected string: %q", AnyRole.String())
	}
}

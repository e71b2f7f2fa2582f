package domain

import (
	"sort"
	"strings"
)

type Role string

const (
	// User is the default role for self-registered accounts.
	RoleUser Role = "user"
	// Admin can list, inspect, re-role, (de)activate and delete accounts.
	RoleAdmin Role = "admin"
)

func IsValidRole(r string) bool {
	return r == string(RoleUser) || r == string(RoleAdmin)
}

// ParseRole accepts any casing and surrounding whitespace.
func ParseRole(raw string) (Role, error) {
	r := strings.ToLower(strings.TrimSpace(raw))
	if !IsValidRole(r) {
		return "", ErrInvalidRole(raw)
	}
	return Role(r), nil
}

// RoleSet is the set of roles an operation accepts.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

// String renders the set sorted, e.g. "admin,user".
func (s RoleSet) String() string {
	out := make([]string, 0, len(s))
	for r := range s {
		out = append(out, string(r))
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

var (
	AdminOnly = NewRoleSet(RoleAdmin)
	AnyRole   = NewRoleSet(RoleUser, RoleAdmin)
)

// Package access decides whether a session may call an operation.
package access

import "github.com/baechuer/account-service/internal/domain"

// Authorize evaluates session claims against the role set an operation
// requires.
//
//	nil claims              -> token_missing (401)
//	non-session token       -> token_invalid (401)
//	role not in required    -> insufficient_role (403)
func Authorize(claims *domain.Claims, required domain.RoleSet) error {
	if claims == nil {
		return domain.ErrTokenMissing()
	}
	if claims.Purpose != domain.PurposeSession {
		return domain.ErrTokenInvalid()
	}
	if !required.Contains(claims.Role) {
		return domain.ErrInsufficientRole(required.String())
	}
	return nil
}

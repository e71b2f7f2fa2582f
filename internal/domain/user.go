package domain

import "time"

// User is the only persisted entity. PasswordHash never holds plaintext.
// An empty VerificationToken or ResetToken means no pending token.
type User struct {
	ID                string
	Email             string
	PasswordHash      string
	Verified          bool
	VerificationToken string
	ResetToken        string
	Role              Role
	Active            bool
	CreatedAt         time.Time
}

// TokenPurpose separates tokens that share one signing key.
type TokenPurpose string

const (
	PurposeVerifyEmail   TokenPurpose = "verify_email"
	PurposePasswordReset TokenPurpose = "password_reset"
	PurposeSession       TokenPurpose = "session"
)

// Claims is the payload carried by every signed token.
type Claims struct {
	Subject   string
	Email     string
	Role      Role
	Purpose   TokenPurpose
	ExpiresAt time.Time
}

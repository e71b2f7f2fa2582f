package postgres

import (
	"database/sql"
	"time"

	"github.com/baechuer/account-service/internal/domain"
)

// userRow mirrors the users table; token columns are nullable.
type userRow struct {
	ID                string
	Email             string
	PasswordHash      string
	Verified          bool
	VerificationToken sql.NullString
	ResetToken        sql.NullString
	Role              string
	Active            bool
	CreatedAt         time.Time
}

const userColumns = `id, email, password_hash, verified, verification_token, reset_token, role, active, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (userRow, error) {
	var ur userRow
	err := s.Scan(
		&ur.ID,
		&ur.Email,
		&ur.PasswordHash,
		&ur.Verified,
		&ur.VerificationToken,
		&ur.ResetToken,
		&ur.Role,
		&ur.Active,
		&ur.CreatedAt,
	)
	return ur, err
}

func toDomainUser(ur userRow) domain.User {
	return domain.User{
		ID:                ur.ID,
		Email:             ur.Email,
		PasswordHash:      ur.PasswordHash,
		Verified:          ur.Verified,
		VerificationToken: ur.VerificationToken.String,
		ResetToken:        ur.ResetToken.String,
		Role:              domain.Role(ur.Role),
		Active:            ur.Active,
		CreatedAt:         ur.CreatedAt,
	}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baechuer/account-service/internal/domain"
)

const uniqueViolation = "23505"

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// ---------- helpers ----------

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// expectOne maps "no row touched" to miss.
func expectOne(res sql.Result, err error, miss func() *domain.Error) error {
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	if n == 0 {
		return miss()
	}
	return nil
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg string) (domain.User, error) {
	ur, err := scanUser(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

// ---------- account.UserRepo ----------

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 LIMIT 1;`, id)
}

// GetByEmail matches the stored email exactly.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 LIMIT 1;`, email)
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.PasswordHash == "" {
		return domain.User{}, domain.ErrMissingField("password_hash")
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}

	const q = `
INSERT INTO users (id, email, password_hash, verified, verification_token, reset_token, role, active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING ` + userColumns + `;
`
	ur, err := scanUser(r.db.QueryRowContext(ctx, q,
		u.ID, u.Email, u.PasswordHash, u.Verified,
		nullable(u.VerificationToken), nullable(u.ResetToken),
		string(u.Role), u.Active,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC;`)
	if err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		ur, err := scanUser(rows)
		if err != nil {
			return nil, domain.ErrDBUnavailable(err)
		}
		out = append(out, toDomainUser(ur))
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

// ConsumeVerificationToken verifies the account only while token is still the
// stored one, clearing it in the same statement.
func (r *UserRepo) ConsumeVerificationToken(ctx context.Context, email, token string) error {
	if email == "" || token == "" {
		return domain.ErrTokenInvalid()
	}
	const q = `
UPDATE users
SET verified = TRUE,
    verification_token = NULL
WHERE email = $1 AND verification_token = $2;
`
	res, err := r.db.ExecContext(ctx, q, email, token)
	return expectOne(res, err, domain.ErrTokenInvalid)
}

// SetResetToken overwrites any earlier reset token.
func (r *UserRepo) SetResetToken(ctx context.Context, email, token string) error {
	if email == "" {
		return domain.ErrUserNotFound()
	}
	if token == "" {
		return domain.ErrMissingField("reset_token")
	}
	const q = `
UPDATE users
SET reset_token = $2
WHERE email = $1;
`
	res, err := r.db.ExecContext(ctx, q, email, token)
	return expectOne(res, err, domain.ErrUserNotFound)
}

func (r *UserRepo) ConsumeResetToken(ctx context.Context, email, token, newHash string) error {
	if email == "" || token == "" {
		return domain.ErrTokenInvalid()
	}
	if newHash == "" {
		return domain.ErrMissingField("password_hash")
	}
	const q = `
UPDATE users
SET password_hash = $3,
    reset_token = NULL
WHERE email = $1 AND reset_token = $2;
`
	res, err := r.db.ExecContext(ctx, q, email, token, newHash)
	return expectOne(res, err, domain.ErrTokenInvalid)
}

func (r *UserRepo) SetRole(ctx context.Context, id string, role domain.Role) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrUserNotFound()
	}
	if !domain.IsValidRole(string(role)) {
		return domain.ErrInvalidRole(string(role))
	}
	res, err := r.db.ExecContext(ctx, `UPDATE users SET role = $2 WHERE id = $1;`, id, string(role))
	return expectOne(res, err, domain.ErrUserNotFound)
}

func (r *UserRepo) SetActive(ctx context.Context, id string, active bool) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrUserNotFound()
	}
	res, err := r.db.ExecContext(ctx, `UPDATE users SET active = $2 WHERE id = $1;`, id, active)
	return expectOne(res, err, domain.ErrUserNotFound)
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrUserNotFound()
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1;`, id)
	return expectOne(res, err, domain.ErrUserNotFound)
}

// Ping reports whether the database is reachable (readiness).
func (r *UserRepo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

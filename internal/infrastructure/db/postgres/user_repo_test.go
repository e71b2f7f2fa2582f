package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/account-service/internal/domain"
)

var cols = []string{"id", "email", "password_hash", "verified", "verification_token", "reset_token", "role", "active", "created_at"}

func newMockRepo(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewUserRepo(db), mock
}

func TestUserRepo_GetByEmail_Found(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("u1", "a@x.com", "hash", false, "vt", nil, "user", true, now))

	u, err := repo.GetByEmail(context.Background(), " a@x.com ")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "vt", u.VerificationToken)
	assert.Equal(t, "", u.ResetToken)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.True(t, u.Active)
	assert.False(t, u.Verified)
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.True(t, domain.Is(err, "user_not_found"), "got %v", err)
}

func TestUserRepo_GetByID_DBError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs("u1").
		WillReturnError(errors.New("conn reset"))

	_, err := repo.GetByID(context.Background(), "u1")
	assert.True(t, domain.Is(err, "db_unavailable"), "got %v", err)
}

func TestUserRepo_Create_Success(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("u1", "a@x.com", "hash", false, sqlmock.AnyArg(), sqlmock.AnyArg(), "user", true).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("u1", "a@x.com", "hash", false, "vt", nil, "user", true, now))

	u, err := repo.Create(context.Background(), domain.User{
		ID: "u1", Email: "a@x.com", PasswordHash: "hash", VerificationToken: "vt", Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "vt", u.VerificationToken)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.WithinDuration(t, now, u.CreatedAt, time.Second)
}

func TestUserRepo_Create_UniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), domain.User{ID: "u1", Email: "a@x.com", PasswordHash: "h", Role: domain.RoleUser})
	assert.True(t, domain.Is(err, "email_already_exists"), "got %v", err)
}

func TestUserRepo_Create_OtherError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(errors.New("duplicate-looking text but not a pg error"))

	_, err := repo.Create(context.Background(), domain.User{ID: "u1", Email: "a@x.com", PasswordHash: "h"})
	assert.True(t, domain.Is(err, "db_unavailable"), "got %v", err)
}

func TestUserRepo_Create_MissingFields(t *testing.T) {
	repo, _ := newMockRepo(t)

	_, err := repo.Create(context.Background(), domain.User{Email: "a@x.com", PasswordHash: "h"})
	assert.True(t, domain.Is(err, "missing_field"))
	_, err = repo.Create(context.Background(), domain.User{ID: "u1", PasswordHash: "h"})
	assert.True(t, domain.Is(err, "missing_field"))
	_, err = repo.Create(context.Background(), domain.User{ID: "u1", Email: "a@x.com"})
	assert.True(t, domain.Is(err, "missing_field"))
}

func TestUserRepo_List_Ordered(t *testing.T) {
	repo, mock := newMockRepo(t)
	t0 := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM users ORDER BY created_at ASC`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("u1", "a@x.com", "h", true, nil, nil, "admin", true, t0).
			AddRow("u2", "b@x.com", "h", false, "vt", nil, "user", false, t0.Add(time.Second)))

	us, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, us, 2)
	assert.Equal(t, "u1", us[0].ID)
	assert.Equal(t, domain.RoleAdmin, us[0].Role)
	assert.False(t, us[1].Active)
}

func TestUserRepo_ConsumeVerificationToken(t *testing.T) {
	t.Run("hit", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`UPDATE users\s+SET verified = TRUE,\s+verification_token = NULL\s+WHERE email = \$1 AND verification_token = \$2`).
			WithArgs("a@x.com", "tok").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.ConsumeVerificationToken(context.Background(), "a@x.com", "tok"))
	})

	t.Run("miss", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`UPDATE users`).
			WithArgs("a@x.com", "used").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.ConsumeVerificationToken(context.Background(), "a@x.com", "used")
		assert.True(t, domain.Is(err, "token_invalid"), "got %v", err)
	})

	t.Run("empty token never hits db", func(t *testing.T) {
		repo, _ := newMockRepo(t)
		err := repo.ConsumeVerificationToken(context.Background(), "a@x.com", "")
		assert.True(t, domain.Is(err, "token_invalid"))
	})
}

func TestUserRepo_SetResetToken(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE users\s+SET reset_token = \$2\s+WHERE email = \$1`).
		WithArgs("a@x.com", "rt").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetResetToken(context.Background(), "a@x.com", "rt"))

	mock.ExpectExec(`UPDATE users`).
		WithArgs("ghost@x.com", "rt").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.SetResetToken(context.Background(), "ghost@x.com", "rt")
	assert.True(t, domain.Is(err, "user_not_found"), "got %v", err)
}

func TestUserRepo_ConsumeResetToken(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE users\s+SET password_hash = \$3,\s+reset_token = NULL\s+WHERE email = \$1 AND reset_token = \$2`).
		WithArgs("a@x.com", "rt", "newhash").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.ConsumeResetToken(context.Background(), "a@x.com", "rt", "newhash"))

	mock.ExpectExec(`UPDATE users`).
		WithArgs("a@x.com", "old", "newhash").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.ConsumeResetToken(context.Background(), "a@x.com", "old", "newhash")
	assert.True(t, domain.Is(err, "token_invalid"), "got %v", err)
}

func TestUserRepo_SetRole(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE users SET role = \$2 WHERE id = \$1`).
		WithArgs("u1", "admin").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetRole(context.Background(), "u1", domain.RoleAdmin))

	err := repo.SetRole(context.Background(), "u1", domain.Role("root"))
	assert.True(t, domain.Is(err, "invalid_role"))
}

func TestUserRepo_SetActive_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE users SET active = \$2 WHERE id = \$1`).
		WithArgs("ghost", false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetActive(context.Background(), "ghost", false)
	assert.True(t, domain.Is(err, "user_not_found"), "got %v", err)
}

func TestUserRepo_Delete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "u1"))

	mock.ExpectExec(`DELETE FROM users`).
		WithArgs("u1").
		WillReturnError(errors.New("timeout"))
	err := repo.Delete(context.Background(), "u1")
	assert.True(t, domain.Is(err, "db_unavailable"), "got %v", err)
}

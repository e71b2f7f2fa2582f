package postgres

import (
	"context"
	"database/sql"
)

// Schema is the users table this repository reads and writes. It is applied
// by `account-service -init-schema` and by the integration tests.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id                  TEXT PRIMARY KEY,
    email               TEXT NOT NULL UNIQUE,
    password_hash       TEXT NOT NULL,
    verified            BOOLEAN NOT NULL DEFAULT FALSE,
    verification_token  TEXT NULL,
    reset_token         TEXT NULL,
    role                TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
    active              BOOLEAN NOT NULL DEFAULT TRUE,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

func ApplySchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}

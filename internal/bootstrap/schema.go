package bootstrap

import (
	"context"
	"fmt"

	"github.com/baechuer/account-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/account-service/internal/logger"
)

// InitSchema creates the users table if it does not exist yet. It is the
// one-shot path behind `-init-schema`; the server itself never migrates.
func InitSchema(ctx context.Context) error {
	return initSchema(ctx, defaultDeps())
}

func initSchema(ctx context.Context, deps Deps) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return err
	}

	db, err := deps.NewDB(cfg.DBAddr, cfg.DBDebug)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := postgres.ApplySchema(ctx, db); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	logger.Logger.Info().Msg("schema applied")
	return nil
}

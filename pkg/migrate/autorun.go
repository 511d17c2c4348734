package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/workshop-backend/pkg/config"
	"github.com/angelmondragon/workshop-backend/pkg/db"
	"github.com/angelmondragon/workshop-backend/pkg/logger"
)

// MaybeRunDev applies pending migrations on boot for dev environments that
// opted in through WORKSHOP_AUTO_MIGRATE.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !autoMigrateEnabled(cfg) {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	dialect := Dialect(cfg.DB.Driver)

	ctx = logg.WithFields(ctx, map[string]any{"dir": DefaultDir, "dialect": dialect})
	if err := Run(ctx, sqlDB, dialect, DefaultDir, string(CommandUp)); err != nil {
		return err
	}

	version, err := CurrentVersion(ctx, sqlDB, dialect)
	if err != nil {
		return err
	}
	logg.Info(logg.WithFields(ctx, map[string]any{"schema_version": version}), "dev migrations applied")
	return nil
}

func autoMigrateEnabled(cfg *config.Config) bool {
	return cfg != nil && cfg.App.IsDev() && cfg.FeatureFlags.AutoMigrate
}

package migration

import (
	"github.com/watchline/watchline/internal/config"
	"github.com/watchline/watchline/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// Non-postgres deployments manage schema out of band.
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}

		if cfg.SeedDefaults {
			return seed.EnsureDefaults(conn)
		}
		return nil
	}),
)

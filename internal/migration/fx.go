package migration

import (
	"github.com/agencyops/kanri/internal/config"
	"github.com/agencyops/kanri/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if err := Run(conn); err != nil {
			return err
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoData(conn, cfg.DefaultOrgID)
		}
		return nil
	}),
)

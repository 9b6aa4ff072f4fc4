package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	accountdomain "github.com/agencyops/kanri/internal/account/domain"
	agentdomain "github.com/agencyops/kanri/internal/agent/domain"
	coldcalldomain "github.com/agencyops/kanri/internal/coldcall/domain"
	contractdomain "github.com/agencyops/kanri/internal/contract/domain"
	invoicedomain "github.com/agencyops/kanri/internal/invoice/domain"
	opslogdomain "github.com/agencyops/kanri/internal/opslog/domain"
	paymentdomain "github.com/agencyops/kanri/internal/payment/domain"
	plandomain "github.com/agencyops/kanri/internal/plan/domain"
	routedomain "github.com/agencyops/kanri/internal/route/domain"
	settlementdomain "github.com/agencyops/kanri/internal/settlement/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const migrationsDir = "migrations"

// RunMigrations applies the versioned schema against postgres. Other
// dialects go through AutoMigrate instead; see Run.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// Run brings the schema up to date for whichever dialect is connected.
func Run(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}

	if conn.Dialector.Name() == "postgres" {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}
	return AutoMigrate(conn)
}

// AutoMigrate creates the schema from the models. Used for sqlite and
// mysql where the versioned SQL is postgres-specific.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&accountdomain.Account{},
		&plandomain.Plan{},
		&contractdomain.Contract{},
		&invoicedomain.Invoice{},
		&paymentdomain.Payment{},
		&routedomain.RouteIntegration{},
		&agentdomain.Agent{},
		&agentdomain.AgentContract{},
		&agentdomain.AgentMonthlyPerformance{},
		&settlementdomain.AgentMonthlyEntitlement{},
		&settlementdomain.AgentSettlement{},
		&coldcalldomain.ColdCall{},
		&opslogdomain.OpsLog{},
	)
}

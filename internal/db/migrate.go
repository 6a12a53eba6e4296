package db

import (
	"github.com/diewo77/gleeful/internal/config"
	"github.com/diewo77/gleeful/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// Register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MigrationsSource is where the SQL migrations live, relative to the working directory.
var MigrationsSource = "file://migrations"

var requiredTables = []string{"users", "services", "cart_items", "orders", "order_items", "news", "portfolio"}

// Migrate brings the schema up to date.
// With MIGRATIONS=1 on postgres the SQL files are applied through golang-migrate;
// otherwise gorm AutoMigrate creates the tables from the models.
func Migrate(conn *gorm.DB, cfg config.Database) error {
	if cfg.Migrations && cfg.Driver == "postgres" {
		if err := RunSQLMigrations(ToURLDSN(NormalizeDSN(cfg.DSN))); err != nil {
			return errors.Wrap(err, "sql migrations")
		}
	} else {
		if cfg.Migrations {
			log.Warn("SQL migrations only target postgres; falling back to AutoMigrate")
		}
		if err := AutoMigrate(conn); err != nil {
			return err
		}
	}
	for _, table := range requiredTables {
		if !conn.Migrator().HasTable(table) {
			return errors.Errorf("missing table after migration: %s", table)
		}
	}
	return nil
}

// AutoMigrate creates or updates every table from the gorm models.
func AutoMigrate(conn *gorm.DB) error {
	for _, m := range models.All() {
		if err := conn.AutoMigrate(m); err != nil {
			return errors.Wrapf(err, "automigrate %T", m)
		}
	}
	return nil
}

// RunSQLMigrations applies ./migrations with golang-migrate.
func RunSQLMigrations(dsn string) error {
	m, err := migrate.New(MigrationsSource, dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	log.Info("sql migrations applied")
	return nil
}

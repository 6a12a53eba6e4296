// Package db opens the database, applies the schema and seeds reference data.
package db

import (
	"os"
	"path/filepath"
	"time"

	"github.com/diewo77/gleeful/internal/config"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectAttempts = 10

// Connect opens the configured database, retrying while postgres starts up.
func Connect(cfg config.Database) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dsn := NormalizeDSN(cfg.DSN)
		log.WithField("dsn", MaskDSN(dsn)).Info("using postgres")
		dialector = postgres.Open(dsn)
	default:
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.Wrap(err, "create database directory")
			}
		}
		log.WithField("path", cfg.Path).Info("using sqlite")
		dialector = sqlite.Open(cfg.Path + "?_foreign_keys=on")
	}

	var (
		conn *gorm.DB
		err  error
	)
	for i := 0; i < connectAttempts; i++ {
		conn, err = gorm.Open(dialector, gcfg)
		if err == nil {
			break
		}
		log.WithError(err).WithField("attempt", i+1).Warn("database connection failed, retrying")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, errors.Wrap(err, "connect database after retries")
	}
	if err := conn.Exec("SELECT 1").Error; err != nil {
		return nil, errors.Wrap(err, "db ping failed")
	}
	return conn, nil
}

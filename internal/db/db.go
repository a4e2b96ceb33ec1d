// Package db opens the gorm connection the rest of the module is wired
// against. Grounded on the teacher's own connection-bootstrap habit
// (gorm.Open against a single *gorm.DB passed down into every service) and
// the sqlite-in-memory pattern its integration tests used
// (gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})).
package db

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultDSN is used when no DSN is configured, matching the teacher's
// zero-config local-dev default of a file-backed sqlite database.
const DefaultDSN = "mcpmux.db"

// Open returns a *gorm.DB for dsn. A dsn beginning with "postgres://" or
// "postgresql://" opens a postgres connection via gorm.io/driver/postgres;
// anything else (including the empty string, which falls back to
// DefaultDSN) opens a sqlite connection via the CGO-free glebarez/sqlite
// driver the teacher depends on.
func Open(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}

	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		dialector = postgres.Open(dsn)
	default:
		dialector = sqlite.Open(dsn)
	}

	conn, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	logger.Info("database connection opened", zap.String("driver", driverName(dsn)))
	return conn, nil
}

func driverName(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

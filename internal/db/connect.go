package db

import (
	"fmt"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/shopfloor/toolcrib/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens a GORM connection using the configured driver. SQLite for
// single-box installs, MySQL for shared ones.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	switch cfg.Driver {
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(cfg.Path), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("db: open sqlite %s: %w", cfg.Path, err)
		}
		return db, nil
	case "mysql":
		// gorm connects lazily, so check the DSN up front.
		if _, err := mysqldriver.ParseDSN(cfg.DSN); err != nil {
			return nil, fmt.Errorf("db: invalid mysql dsn: %w", err)
		}
		db, err := gorm.Open(mysql.Open(cfg.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("db: connect mysql: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", cfg.Driver)
	}
}

// OpenMemory opens an in-memory SQLite database, used by tests and the
// seed dry-run path.
func OpenMemory() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("db: open in-memory sqlite: %w", err)
	}
	return db, nil
}

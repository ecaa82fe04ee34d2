// Package database opens the gorm connection to the WMS store.
package database

import (
	"net/url"
	"strconv"
	"time"

	oracle "github.com/godoes/gorm-oracle"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
	"github.com/tbg-logistics/wms-labeler/internal/infrastructure/config"
)

// NewConnection opens the Oracle store using the configured DSN and
// sizes the shared pool. The pipeline only reads; one pool serves a
// whole job and is closed at the job boundary.
func NewConnection(cfg *config.Config) (*gorm.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	dsn = withConnectTimeout(dsn, cfg.Pool.ConnTimeoutMs)

	db, err := gorm.Open(oracle.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, shared.NewDbError("cannot open store connection", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, shared.NewDbError("cannot access connection pool", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Pool.MaxSize)
	sqlDB.SetMaxIdleConns(cfg.Pool.MaxSize)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// withConnectTimeout applies DB_POOL_CONN_TIMEOUT_MS to the driver via
// go-ora's CONNECTION TIMEOUT URL option (whole seconds, rounded up).
// An explicit DSN that already sets the option wins.
func withConnectTimeout(dsn string, timeoutMs int) string {
	if timeoutMs <= 0 {
		return dsn
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return dsn
	}
	q := u.Query()
	if q.Get("CONNECTION TIMEOUT") != "" {
		return dsn
	}
	secs := (timeoutMs + 999) / 1000
	q.Set("CONNECTION TIMEOUT", strconv.Itoa(secs))
	u.RawQuery = q.Encode()
	return u.String()
}

// NewTestConnection opens an in-memory SQLite database for tests.
func NewTestConnection() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, shared.NewDbError("cannot open test database", err)
	}
	return db, nil
}

// Close tears down the pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

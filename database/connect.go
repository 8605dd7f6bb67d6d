package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/krishkalaria12/linegrade/logging"
	"github.com/krishkalaria12/linegrade/models"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Connect opens the database for the configured driver and tunes the pool.
func Connect(driver, dsn string, debug bool) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:         newLogger(debug),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqliteDialector(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get DB object: %w", err)
	}

	if driver == DriverSQLite {
		// sqlite serializes writers; a single connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(10)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	return db, nil
}

// gormWriter sends GORM log lines to the process logger.
type gormWriter struct {
	level zerolog.Level
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	l := logging.Logger()
	l.WithLevel(w.level).
		Str("component", "gorm").
		Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// newLogger logs slow queries and errors, or every statement when debug is
// set. Missing records are expected on lookups and are not logged.
func newLogger(debug bool) logger.Interface {
	level, zlevel := logger.Warn, zerolog.WarnLevel
	if debug {
		level, zlevel = logger.Info, zerolog.DebugLevel
	}

	return logger.New(gormWriter{level: zlevel}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// OpenSQLite opens a file backed sqlite database with foreign keys enforced.
func OpenSQLite(path string) (*gorm.DB, error) {
	return Connect(DriverSQLite, path, false)
}

func sqliteDialector(path string) gorm.Dialector {
	dsn := path
	if !strings.Contains(dsn, "_pragma=") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	return sqlite.Dialector{DriverName: "sqlite", DSN: dsn}
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// WaitForDB pings until the database answers or ctx is done.
func WaitForDB(ctx context.Context, db *gorm.DB, interval time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	logging.Info().Msg("Waiting for database...")
	for {
		err := sqlDB.PingContext(ctx)
		if err == nil {
			logging.Info().Msg("Database available!")
			return nil
		}
		logging.Warn().Err(err).Dur("retry_in", interval).Msg("Database unavailable")

		select {
		case <-ctx.Done():
			return errors.Join(ctx.Err(), err)
		case <-time.After(interval):
		}
	}
}

func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Options selects and tunes the history database.
type Options struct {
	// DatabaseURL is a postgres DSN ("postgres://..." or "host=... ") or a
	// SQLite file ("sqlite://path", "file:path" or a plain path).
	DatabaseURL string
	MinConns    int32
	MaxConns    int32
	LogLevel    string
	Environment string
}

type Pool struct {
	gdb     *gorm.DB
	sqlDB   *sql.DB
	dialect string
}

func NewPool(ctx context.Context, opts Options) (*Pool, error) {
	dialector, dialect, err := resolveDialector(opts.DatabaseURL)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(resolveGormLogLevel(opts.LogLevel, opts.Environment)),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get gorm sql db: %w", err)
	}

	maxOpen := int(opts.MaxConns)
	if maxOpen <= 0 {
		maxOpen = 4
	}
	if dialect == "sqlite" {
		// SQLite serializes writers; one connection avoids "database is locked".
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(max(1, min(int(opts.MinConns), maxOpen)))
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	pool := &Pool{
		gdb:     gdb,
		sqlDB:   sqlDB,
		dialect: dialect,
	}
	if err := pool.autoMigrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("auto-migrate schema: %w", err)
	}

	return pool, nil
}

func (p *Pool) Close() error {
	if p == nil || p.sqlDB == nil {
		return nil
	}
	return p.sqlDB.Close()
}

func (p *Pool) GORM() *gorm.DB {
	if p == nil {
		return nil
	}
	return p.gdb
}

// Dialect returns "postgres" or "sqlite".
func (p *Pool) Dialect() string {
	if p == nil {
		return ""
	}
	return p.dialect
}

func (p *Pool) ready() error {
	if p == nil || p.gdb == nil {
		return fmt.Errorf("database pool is not initialized")
	}
	return nil
}

func resolveDialector(raw string) (gorm.Dialector, string, error) {
	dsn := strings.TrimSpace(raw)
	lower := strings.ToLower(dsn)
	switch {
	case dsn == "":
		return nil, "", fmt.Errorf("database url is required")
	case strings.HasPrefix(lower, "postgres://"),
		strings.HasPrefix(lower, "postgresql://"),
		strings.Contains(lower, "host="):
		return postgres.Open(dsn), "postgres", nil
	case dsn == ":memory:", strings.HasPrefix(lower, "file:"):
		return sqlite.Open(dsn), "sqlite", nil
	}

	path := strings.TrimPrefix(dsn, "sqlite://")
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, "", fmt.Errorf("create database dir: %w", err)
		}
	}
	return sqlite.Open(path), "sqlite", nil
}

func resolveGormLogLevel(appLogLevel, environment string) logger.LogLevel {
	level := strings.ToLower(strings.TrimSpace(appLogLevel))
	switch level {
	case "trace", "debug":
		return logger.Info
	case "warn", "warning", "info", "":
		return logger.Warn
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		if strings.EqualFold(strings.TrimSpace(environment), "local") {
			return logger.Warn
		}
		return logger.Error
	}
}

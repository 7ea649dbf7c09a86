// Package database opens the configured store and hands out repositories for it.
package database

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"quill/app/config"
	"quill/app/models"
	"quill/app/observability"
	"quill/app/repositories"

	"github.com/dgraph-io/badger/v4"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Store bundles the repositories of one open database.
type Store struct {
	Posts    repositories.PostRepository
	Comments repositories.CommentRepository

	badger *badger.DB
	sql    *gorm.DB
}

// Open connects to the backend selected by cfg.DBDriver.
func Open(cfg *config.Config) (*Store, error) {
	switch cfg.DBDriver {
	case config.DriverBadger:
		db, err := OpenBadger(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		return NewBadgerStore(db), nil
	case config.DriverSQLite, config.DriverPostgres:
		db, err := OpenGorm(cfg.DBDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		if !cfg.IsProduction() {
			if err := Migrate(db); err != nil {
				return nil, err
			}
		}
		return NewGormStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// NewBadgerStore wraps an open badger database.
func NewBadgerStore(db *badger.DB) *Store {
	return &Store{
		Posts:    repositories.NewBadgerPostRepository(db),
		Comments: repositories.NewBadgerCommentRepository(db),
		badger:   db,
	}
}

// NewGormStore wraps an open gorm connection.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Posts:    repositories.NewGormPostRepository(db),
		Comments: repositories.NewGormCommentRepository(db),
		sql:      db,
	}
}

// Badger returns the underlying badger database, or nil for SQL stores.
func (s *Store) Badger() *badger.DB {
	return s.badger
}

// Ping checks that the store still answers.
func (s *Store) Ping() error {
	if s.badger != nil {
		if s.badger.IsClosed() {
			return errors.New("badger is closed")
		}
		return nil
	}
	sqlDB, err := s.sql.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s.badger != nil {
		return s.badger.Close()
	}
	if s.sql != nil {
		sqlDB, err := s.sql.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

// OpenBadger opens the badger database at path. An empty path opens an
// in-memory database.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	} else if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	opts = opts.
		WithLogger(observability.BadgerLogger{}).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	observability.Logger.Info("Database opened", slog.String("driver", config.DriverBadger), slog.String("path", path))
	return db, nil
}

// OpenGorm opens a relational database through gorm with slog logging.
func OpenGorm(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverSQLite:
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dialector = sqlite.Open(dsn)
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: NewGormLogger(observability.Logger)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == config.DriverSQLite {
		// sqlite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	observability.Logger.Info("Database connected successfully", slog.String("driver", driver))
	return db, nil
}

// Migrate creates or updates the posts and comments tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Post{}, &models.Comment{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	observability.Logger.Info("Database migration completed")
	return nil
}

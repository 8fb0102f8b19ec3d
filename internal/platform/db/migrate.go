package db

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Migrate applies every pending up migration found in files.
func Migrate(dsn string, files fs.FS, logger *slog.Logger) error {
	m, closeFn, err := newMigrator(dsn, files)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migrations up to date")
			return nil
		}
		return fmt.Errorf("platform/db: migrate up: %w", err)
	}
	version, dirty, _ := m.Version()
	logger.Info("migrations applied", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	return nil
}

// Rollback reverts the given number of migrations.
func Rollback(dsn string, files fs.FS, steps int, logger *slog.Logger) error {
	if steps <= 0 {
		return fmt.Errorf("platform/db: rollback steps must be positive")
	}
	m, closeFn, err := newMigrator(dsn, files)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("platform/db: migrate down: %w", err)
	}
	logger.Info("migrations rolled back", slog.Int("steps", steps))
	return nil
}

func newMigrator(dsn string, files fs.FS) (*migrate.Migrate, func(), error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("platform/db: open: %w", err)
	}
	driver, err := postgres.WithInstance(conn, &postgres.Config{})
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("platform/db: migrate driver: %w", err)
	}
	source, err := iofs.New(files, ".")
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("platform/db: migrate source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("platform/db: migrate init: %w", err)
	}
	return m, func() { _, _ = m.Close() }, nil
}

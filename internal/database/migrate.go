package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// MigrationsFS returns the compiled-in migrations rooted at their directory.
func MigrationsFS() fs.FS {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrator defines an interface capable of applying schema migrations.
type Migrator interface {
	Up(ctx context.Context) error
}

// GooseMigrator applies goose-annotated .sql migrations.
type GooseMigrator struct {
	Logger *slog.Logger
	DB     *sql.DB
	FS     fs.FS
}

// NewGooseMigrator builds a migrator that runs migrations from the provided filesystem.
func NewGooseMigrator(db *sql.DB, f fs.FS, logger *slog.Logger) *GooseMigrator {
	return &GooseMigrator{DB: db, FS: f, Logger: logger}
}

// Up applies every pending migration in version order.
func (m *GooseMigrator) Up(ctx context.Context) error {
	if m == nil {
		return errors.New("goose migrator is nil")
	}
	if m.DB == nil {
		return errors.New("goose migrator requires a database handle")
	}
	if m.FS == nil {
		return errors.New("goose migrator requires a filesystem")
	}

	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, m.DB, m.FS)
	if err != nil {
		return fmt.Errorf("init goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	if len(results) == 0 {
		logger.Info("no migrations to run")
		return nil
	}
	for _, res := range results {
		logger.Info("migration applied",
			"version", res.Source.Version,
			"file", res.Source.Path,
			"duration", res.Duration,
		)
	}
	return nil
}

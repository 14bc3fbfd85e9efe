package database

import (
	"context"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brightpixel/agencyportal/internal/config"
)

func TestMigrationsFSContainsOrderedGooseFiles(t *testing.T) {
	entries, err := fs.ReadDir(MigrationsFS(), ".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	prev := ""
	for _, e := range entries {
		require.True(t, strings.HasSuffix(e.Name(), ".sql"), e.Name())
		require.Greater(t, e.Name(), prev)
		prev = e.Name()

		body, err := fs.ReadFile(MigrationsFS(), e.Name())
		require.NoError(t, err)
		require.Contains(t, string(body), "-- +goose Up", e.Name())
		require.Contains(t, string(body), "-- +goose Down", e.Name())
	}
}

func TestGooseMigratorRequiresDependencies(t *testing.T) {
	var nilMigrator *GooseMigrator
	require.Error(t, nilMigrator.Up(context.Background()))
	require.Error(t, (&GooseMigrator{}).Up(context.Background()))
}

func TestConnectValidatesOptions(t *testing.T) {
	_, err := Connect(context.Background(), Options{DSN: "postgres://localhost"})
	require.Error(t, err)
	_, err = Connect(context.Background(), Options{Driver: "pgx"})
	require.Error(t, err)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Config{
		DatabaseDriver:    "pgx",
		DatabaseURL:       "postgres://portal@localhost/portal",
		DBMaxOpenConns:    12,
		DBMaxIdleConns:    3,
		DBConnMaxLifetime: time.Hour,
		DBConnMaxIdleTime: time.Minute,
	}

	opts := OptionsFromConfig(cfg, nil)
	require.Equal(t, "pgx", opts.Driver)
	require.Equal(t, cfg.DatabaseURL, opts.DSN)
	require.Equal(t, 12, opts.MaxOpenConns)
	require.Equal(t, 3, opts.MaxIdleConns)
	require.Equal(t, time.Hour, opts.ConnMaxLifetime)
	require.Equal(t, time.Minute, opts.ConnMaxIdleTime)
}

func TestReadyWithoutConnection(t *testing.T) {
	var db *DB
	require.Error(t, db.Ready(context.Background()))
}

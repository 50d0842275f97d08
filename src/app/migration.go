package app

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func newMigrate(databaseDSN string, migrationPath string) (*migrate.Migrate, error) {
	migration, err := migrate.New(migrationPath, databaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate: %w", err)
	}
	return migration, nil
}

func MigrationUp(databaseDSN string, migrationPath string) error {
	migration, err := newMigrate(databaseDSN, migrationPath)
	if err != nil {
		return err
	}
	defer migration.Close()

	if err := migration.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migration up: %w", err)
	}
	return nil
}

func MigrationDown(databaseDSN string, migrationPath string) error {
	migration, err := newMigrate(databaseDSN, migrationPath)
	if err != nil {
		return err
	}
	defer migration.Close()

	if err := migration.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migration down: %w", err)
	}
	return nil
}

// MigrationVersion reports the applied schema version; dirty is set when a previous run failed halfway.
func MigrationVersion(databaseDSN string, migrationPath string) (uint, bool, error) {
	migration, err := newMigrate(databaseDSN, migrationPath)
	if err != nil {
		return 0, false, err
	}
	defer migration.Close()

	version, dirty, err := migration.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, dirty, nil
}

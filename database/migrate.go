package database

import (
	"embed"
	"errors"
	"fmt"

	"pickem-app/logging"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mongodb"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.json
var migrationsFS embed.FS

const migrationsCollection = "schema_migrations"

// MigrateUp applies all pending migrations
func MigrateUp(db *MongoDB) error {
	logger := logging.WithPrefix("migrate")

	m, err := getMigrate(db)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply")
	} else {
		version, _, _ := m.Version()
		logger.Infof("Successfully migrated to version %d", version)
	}

	return nil
}

// MigrateDown rolls back the given number of migrations
func MigrateDown(db *MongoDB, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("invalid steps value: %d", steps)
	}

	m, err := getMigrate(db)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to rollback migrations: %w", err)
	}
	return nil
}

// MigrationVersion reports the applied schema version; zero means none applied
func MigrationVersion(db *MongoDB) (uint, bool, error) {
	m, err := getMigrate(db)
	if err != nil {
		return 0, false, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// getMigrate wires the embedded JSON migrations to the connected database.
// The migrate instance is not closed here: closing it would disconnect the
// shared client.
func getMigrate(db *MongoDB) (*migrate.Migrate, error) {
	driver, err := mongodb.WithInstance(db.Client(), &mongodb.Config{
		DatabaseName:         db.DatabaseName(),
		MigrationsCollection: migrationsCollection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mongodb driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "mongodb", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, nil
}

package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/allisson/vau/internal/database"
)

// RunMigrations applies all pending migrations of the pseudonym store. Migrations are read
// from migrations/{postgresql,mysql,sqlite} relative to the working directory.
func RunMigrations(logger *slog.Logger, driver, connectionString string) error {
	logger.Info("running database migrations", slog.String("driver", driver))

	dir, err := database.MigrationsDir(driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	m, err := migrate.New("file://migrations/"+dir, migrationDatabaseURL(driver, connectionString))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}

// migrationDatabaseURL turns a database/sql connection string into the URL form expected
// by golang-migrate.
func migrationDatabaseURL(driver, connectionString string) string {
	switch driver {
	case database.DriverMySQL:
		if strings.HasPrefix(connectionString, "mysql://") {
			return connectionString
		}
		return "mysql://" + connectionString
	case database.DriverSQLite:
		if strings.HasPrefix(connectionString, "sqlite://") {
			return connectionString
		}
		path := strings.TrimPrefix(connectionString, "file:")
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		return "sqlite://" + path
	default:
		return connectionString
	}
}

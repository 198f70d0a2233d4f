package database

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"

	"github.com/username/stonksoverwatch/backend/src/logger"
)

var DB *sql.DB

// InitDB opens the sqlite database with the pragmas the rest of the code
// assumes: WAL journaling, a busy timeout for concurrent writers and
// enforced foreign keys. SQLite gets a single connection so writers never
// fight over the file lock.
func InitDB(databasePath string) error {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)", databasePath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("opening database at %s: %w", databasePath, err)
	}
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	DB = db
	logger.L.Info("Database connection established", "path", databasePath)
	return nil
}

// migrationsSourceURL turns a migrations directory into the file:// source
// URL golang-migrate expects, resolving relative directories against the
// working directory.
func migrationsSourceURL(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving migrations directory %s: %w", dir, err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}

// RunMigrations applies every pending migration from migrationsDir.
// An up-to-date schema is not an error.
func RunMigrations(databasePath, migrationsDir string) error {
	if DB == nil {
		return errors.New("database connection is not initialized")
	}

	driver, err := sqlite.WithInstance(DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating sqlite migration driver: %w", err)
	}

	sourceURL, err := migrationsSourceURL(migrationsDir)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, databasePath, driver)
	if err != nil {
		return fmt.Errorf("creating migration instance from %s: %w", sourceURL, err)
	}

	logger.L.Info("Applying database migrations...", "source", sourceURL)
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.L.Info("No new database migrations to apply.")
			return nil
		}
		return fmt.Errorf("applying migrations: %w", err)
	}
	logger.L.Info("Database migrations applied successfully.")
	return nil
}

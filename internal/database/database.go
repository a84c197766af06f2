package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tinypost/tinypost/internal/assets"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

const MemoryPath = ":memory:"

// Open opens the sqlite database at path and applies the embedded migrations
func Open(databasePath string) (*sql.DB, error) {
	if databasePath != MemoryPath {
		dir := filepath.Dir(databasePath)

		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", databasePath)

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is its own database and sqlite allows a
	// single writer anyway
	db.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func Migrate(db *sql.DB) error {
	migrations, err := iofs.New(assets.Migrations, "migrations")

	if err != nil {
		return fmt.Errorf("failed to create migrations: %w", err)
	}

	target, err := sqlite.WithInstance(db, &sqlite.Config{})

	if err != nil {
		return fmt.Errorf("failed to create sqlite instance: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", migrations, "sqlite", target)

	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

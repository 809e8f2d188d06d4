package db

import (
	"embed"
	"fmt"
	"go-bank-ledger/config"
	"go-bank-ledger/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies any pending schema migrations. The migration files are
// embedded in the binary, so it works regardless of the working directory
// the server is launched from.
func Migrate() error {
	cfg := config.AppConfig.Database

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)

	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("cannot load embedded migrations: %w", err)
	}

	mig, err := migrate.NewWithSourceInstance("iofs", src, connStr)
	if err != nil {
		return fmt.Errorf("cannot create migrate instance: %w", err)
	}

	if err := mig.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrate up: %w", err)
	}

	logger.Log.Info("Database schema is up to date")
	return nil
}

package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const migrationsDir = "migrations"

// Migrations exposes the embedded SQL files.
func Migrations() fs.FS {
	return embedMigrations
}

// Migrate применяет все ещё не применённые миграции.
func Migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if err := setupGoose(logger); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// MigrateDown откатывает последнюю миграцию.
func MigrateDown(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if err := setupGoose(logger); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// MigrationStatus logs the state of every migration.
func MigrationStatus(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if err := setupGoose(logger); err != nil {
		return err
	}
	return goose.StatusContext(ctx, db, migrationsDir)
}

func setupGoose(logger *slog.Logger) error {
	goose.SetBaseFS(embedMigrations)
	if logger != nil {
		goose.SetLogger(gooseLogger{logger: logger})
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// gooseLogger направляет вывод goose в slog.
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

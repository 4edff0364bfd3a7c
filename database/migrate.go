package database

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// Migrate brings the schema up to date with the embedded goose migrations
// for the active driver.
func (db *DB) Migrate(ctx context.Context) error {
	dir := "migrations/postgres"
	if db.driver == "sqlite3" {
		dir = "migrations/sqlite"
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(db.driver); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db.DB, dir); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

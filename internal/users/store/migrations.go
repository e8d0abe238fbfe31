package store

import (
	"context"
	"embed"

	"signup/internal/platform/database"
)

//go:embed migrations
var migrationFS embed.FS

// Migrate creates or upgrades the users table for db's dialect.
func Migrate(ctx context.Context, db *database.DB) error {
	return database.Migrate(ctx, db, migrationFS, "migrations/"+string(db.Dialect))
}

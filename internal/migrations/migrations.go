package migrations

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"datadesk/m/internal/database"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT NOT NULL UNIQUE,
            hashed_password TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'user',
            CONSTRAINT check_user_role CHECK (role IN ('user', 'admin'))
        );`,
	`CREATE TABLE IF NOT EXISTS data_entries (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            content TEXT NOT NULL,
            format TEXT NOT NULL,
            user_id INTEGER NOT NULL,
            FOREIGN KEY(user_id) REFERENCES users(id)
        );`,
	`CREATE INDEX IF NOT EXISTS idx_data_entries_user_id ON data_entries(user_id);`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            username TEXT NOT NULL UNIQUE,
            hashed_password TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'user',
            CONSTRAINT check_user_role CHECK (role IN ('user', 'admin'))
        );`,
	`CREATE TABLE IF NOT EXISTS data_entries (
            id SERIAL PRIMARY KEY,
            content TEXT NOT NULL,
            format TEXT NOT NULL,
            user_id INTEGER NOT NULL REFERENCES users(id)
        );`,
	`CREATE INDEX IF NOT EXISTS idx_data_entries_user_id ON data_entries(user_id);`,
}

// Run creates the users and data_entries tables for the connected dialect.
func Run(ctx context.Context, db *sqlx.DB) error {
	schema := sqliteSchema
	if db.DriverName() == database.DriverPostgres {
		schema = postgresSchema
	}

	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

package testutil

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"datadesk/m/internal/database"
	"datadesk/m/internal/migrations"
)

// OpenDB opens an in-memory SQLite database with the schema applied.
// The database is closed when the test finishes.
func OpenDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Connect(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

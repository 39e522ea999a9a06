package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	"datadesk/m/internal/database"
	"datadesk/m/internal/testutil"
)

func TestDriverFor(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost/db":   database.DriverPostgres,
		"PostgreSQL://u@localhost/db":   database.DriverPostgres,
		"file:datadesk.db":              database.DriverSQLite,
		":memory:":                      database.DriverSQLite,
		"/var/lib/datadesk/datadesk.db": database.DriverSQLite,
	}
	for dsn, want := range cases {
		if got := database.DriverFor(dsn); got != want {
			t.Fatalf("DriverFor(%q) = %q, want %q", dsn, got, want)
		}
	}
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()

	err := database.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`INSERT INTO users (username, hashed_password) VALUES (?, ?)`, "kept", "x")
		return err
	})
	if err != nil {
		t.Fatalf("commit tx: %v", err)
	}

	boom := errors.New("boom")
	err = database.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`INSERT INTO users (username, hashed_password) VALUES (?, ?)`, "dropped", "x"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}

	var names []string
	if err := db.Select(&names, `SELECT username FROM users ORDER BY id`); err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(names) != 1 || names[0] != "kept" {
		t.Fatalf("unexpected rows after rollback: %v", names)
	}
}

func TestClassifyConstraintErrors(t *testing.T) {
	db := testutil.OpenDB(t)

	if _, err := db.Exec(`INSERT INTO users (username, hashed_password) VALUES (?, ?)`, "dup", "x"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, err := db.Exec(`INSERT INTO users (username, hashed_password) VALUES (?, ?)`, "dup", "x")
	if !errors.Is(database.Classify(err), database.ErrUniqueViolation) {
		t.Fatalf("expected unique violation, got %v", err)
	}

	_, err = db.Exec(`INSERT INTO data_entries (content, format, user_id) VALUES (?, ?, ?)`, "c", "JSON", 999)
	if !errors.Is(database.Classify(err), database.ErrForeignKeyViolation) {
		t.Fatalf("expected foreign key violation, got %v", err)
	}

	if database.Classify(nil) != nil {
		t.Fatal("Classify(nil) should be nil")
	}
}

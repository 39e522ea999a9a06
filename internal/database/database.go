package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	// ErrUniqueViolation is returned by Classify for duplicate unique keys.
	ErrUniqueViolation = errors.New("unique constraint violation")
	// ErrForeignKeyViolation is returned by Classify for broken references.
	ErrForeignKeyViolation = errors.New("foreign key constraint violation")
)

// DriverFor picks the driver name for a DSN. postgres:// and postgresql://
// URLs go to lib/pq, everything else is treated as a SQLite DSN.
func DriverFor(dsn string) string {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// Connect opens the database named by dsn and verifies the connection.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	driver := DriverFor(dsn)
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// A single connection keeps :memory: databases and pragmas consistent.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}
	return db, nil
}

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Classify maps driver specific constraint failures onto ErrUniqueViolation
// or ErrForeignKeyViolation. Other errors are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", ErrUniqueViolation, pqErr.Message)
		case "23503":
			return fmt.Errorf("%w: %s", ErrForeignKeyViolation, pqErr.Message)
		}
		return err
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		msg := liteErr.Error()
		switch {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %s", ErrUniqueViolation, msg)
		case code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%w: %s", ErrForeignKeyViolation, msg)
		case code&0xff == sqlite3.SQLITE_CONSTRAINT:
			// extended result codes are not always enabled on the connection
			if strings.Contains(msg, "UNIQUE constraint failed") {
				return fmt.Errorf("%w: %s", ErrUniqueViolation, msg)
			}
			if strings.Contains(msg, "FOREIGN KEY constraint failed") {
				return fmt.Errorf("%w: %s", ErrForeignKeyViolation, msg)
			}
		}
	}
	return err
}

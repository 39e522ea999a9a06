package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"datadesk/m/domain"
	"datadesk/m/internal/database"
)

// RoleCount is the number of users holding a role.
type RoleCount struct {
	Role  domain.Role `db:"role"`
	Count int64       `db:"count"`
}

const userColumns = `id, username, hashed_password, role`

// CreateUser inserts a user. A taken username yields ErrConflict.
func (s *Store) CreateUser(ctx context.Context, username, hashedPassword string, role domain.Role) (domain.User, error) {
	if !role.Valid() {
		return domain.User{}, fmt.Errorf("create user: invalid role %q", role)
	}
	var id int64
	err := s.q.QueryRowxContext(ctx,
		s.rebind(`INSERT INTO users (username, hashed_password, role) VALUES (?, ?, ?) RETURNING id`),
		username, hashedPassword, role).Scan(&id)
	if err != nil {
		return domain.User{}, wrapWrite("create user", err)
	}
	return domain.User{ID: id, Username: username, HashedPassword: hashedPassword, Role: role}, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, s.q, &u, s.rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if err != nil {
		return domain.User{}, wrapRead("get user", err)
	}
	return u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, s.q, &u, s.rebind(`SELECT `+userColumns+` FROM users WHERE username = ?`), username)
	if err != nil {
		return domain.User{}, wrapRead("get user by username", err)
	}
	return u, nil
}

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	if err := sqlx.SelectContext(ctx, s.q, &users, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateUser replaces the username and password hash of an existing user.
func (s *Store) UpdateUser(ctx context.Context, id int64, username, hashedPassword string) (domain.User, error) {
	res, err := s.q.ExecContext(ctx,
		s.rebind(`UPDATE users SET username = ?, hashed_password = ? WHERE id = ?`),
		username, hashedPassword, id)
	if err != nil {
		return domain.User{}, wrapWrite("update user", err)
	}
	if err := expectRow(res, "update user"); err != nil {
		return domain.User{}, err
	}
	return s.GetUser(ctx, id)
}

// DeleteUser removes a user. Users referenced by data entries cannot be
// deleted and yield ErrUserHasEntries.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, s.rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		if errors.Is(database.Classify(err), database.ErrForeignKeyViolation) {
			return fmt.Errorf("delete user %d: %w", id, ErrUserHasEntries)
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return expectRow(res, "delete user")
}

// RoleCounts groups users by role, ordered by role name. Roles without users are omitted.
func (s *Store) RoleCounts(ctx context.Context) ([]RoleCount, error) {
	counts := []RoleCount{}
	err := sqlx.SelectContext(ctx, s.q, &counts,
		`SELECT role, COUNT(id) AS count FROM users GROUP BY role ORDER BY role`)
	if err != nil {
		return nil, fmt.Errorf("count roles: %w", err)
	}
	return counts, nil
}

func (s *Store) userExists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := sqlx.GetContext(ctx, s.q, &n, s.rebind(`SELECT COUNT(1) FROM users WHERE id = ?`), id); err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return n > 0, nil
}

func wrapRead(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func wrapWrite(op string, err error) error {
	classified := database.Classify(err)
	switch {
	case errors.Is(classified, database.ErrUniqueViolation):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	case errors.Is(classified, database.ErrForeignKeyViolation):
		return fmt.Errorf("%s: %w", op, ErrUnknownUser)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func expectRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"datadesk/m/domain"
)

// EntryInput carries the caller supplied fields of a data entry.
type EntryInput struct {
	Content string
	Format  string
	UserID  int64
}

const entryColumns = `id, content, format, user_id`

// CreateEntry inserts a data entry. The referenced user must exist.
func (s *Store) CreateEntry(ctx context.Context, in EntryInput) (domain.DataEntry, error) {
	if err := s.checkOwner(ctx, in.UserID); err != nil {
		return domain.DataEntry{}, fmt.Errorf("create entry: %w", err)
	}
	var id int64
	err := s.q.QueryRowxContext(ctx,
		s.rebind(`INSERT INTO data_entries (content, format, user_id) VALUES (?, ?, ?) RETURNING id`),
		in.Content, in.Format, in.UserID).Scan(&id)
	if err != nil {
		return domain.DataEntry{}, wrapWrite("create entry", err)
	}
	return domain.DataEntry{ID: id, Content: in.Content, Format: in.Format, UserID: in.UserID}, nil
}

func (s *Store) GetEntry(ctx context.Context, id int64) (domain.DataEntry, error) {
	var e domain.DataEntry
	err := sqlx.GetContext(ctx, s.q, &e, s.rebind(`SELECT `+entryColumns+` FROM data_entries WHERE id = ?`), id)
	if err != nil {
		return domain.DataEntry{}, wrapRead("get entry", err)
	}
	return e, nil
}

// ListEntries returns every data entry ordered by id.
func (s *Store) ListEntries(ctx context.Context) ([]domain.DataEntry, error) {
	entries := []domain.DataEntry{}
	if err := sqlx.SelectContext(ctx, s.q, &entries, `SELECT `+entryColumns+` FROM data_entries ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// UpdateEntry replaces content, format and user_id of an existing entry.
func (s *Store) UpdateEntry(ctx context.Context, id int64, in EntryInput) (domain.DataEntry, error) {
	if _, err := s.GetEntry(ctx, id); err != nil {
		return domain.DataEntry{}, fmt.Errorf("update entry: %w", err)
	}
	if err := s.checkOwner(ctx, in.UserID); err != nil {
		return domain.DataEntry{}, fmt.Errorf("update entry: %w", err)
	}
	res, err := s.q.ExecContext(ctx,
		s.rebind(`UPDATE data_entries SET content = ?, format = ?, user_id = ? WHERE id = ?`),
		in.Content, in.Format, in.UserID, id)
	if err != nil {
		return domain.DataEntry{}, wrapWrite("update entry", err)
	}
	if err := expectRow(res, "update entry"); err != nil {
		return domain.DataEntry{}, err
	}
	return domain.DataEntry{ID: id, Content: in.Content, Format: in.Format, UserID: in.UserID}, nil
}

func (s *Store) DeleteEntry(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, s.rebind(`DELETE FROM data_entries WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return expectRow(res, "delete entry")
}

func (s *Store) checkOwner(ctx context.Context, userID int64) error {
	ok, err := s.userExists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("user %d: %w", userID, ErrUnknownUser)
	}
	return nil
}

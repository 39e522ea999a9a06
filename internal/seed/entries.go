package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"datadesk/m/internal/database"
	"datadesk/m/internal/store"
)

var entryHeader = []string{"content", "format", "user_id"}

// LoadEntries ingests a CSV of data entries (header content,format,user_id)
// in a single transaction. Rows that cannot be inserted are logged and skipped.
func LoadEntries(ctx context.Context, db *sqlx.DB, csvPath string, logger *slog.Logger) (int, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("open entry seed: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(entryHeader)
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read entry header: %w", err)
	}
	for i, name := range entryHeader {
		if strings.TrimSpace(strings.ToLower(header[i])) != name {
			return 0, fmt.Errorf("unexpected entry header %v, want %v", header, entryHeader)
		}
	}

	rows := 0
	err = database.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		s := store.New(tx)
		line := 1
		for {
			record, err := reader.Read()
			if err == io.EOF {
				return nil
			}
			line++
			if err != nil {
				logger.Warn("skipping unreadable entry row", "line", line, "error", err)
				continue
			}
			userID, err := strconv.ParseInt(strings.TrimSpace(record[2]), 10, 64)
			if err != nil {
				logger.Warn("skipping entry with invalid user_id", "line", line, "user_id", record[2])
				continue
			}
			in := store.EntryInput{
				Content: record[0],
				Format:  strings.TrimSpace(record[1]),
				UserID:  userID,
			}
			if _, err := s.CreateEntry(ctx, in); err != nil {
				if errors.Is(err, store.ErrUnknownUser) {
					logger.Warn("skipping entry for unknown user", "line", line, "user_id", userID)
					continue
				}
				return fmt.Errorf("insert entry on line %d: %w", line, err)
			}
			rows++
		}
	})
	if err != nil {
		return 0, err
	}

	logger.Info("seeded data entries", "rows", rows, "path", csvPath)
	return rows, nil
}

// Package export renders flat records as CSV.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
)

// ErrSchemaMismatch is returned when a record's keys differ from the first record's.
var ErrSchemaMismatch = errors.New("record keys do not match header")

// Field is one named value of a record.
type Field struct {
	Key   string
	Value any
}

// Record is an ordered set of fields.
type Record []Field

// Keys returns the field names in order.
func (r Record) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// ToCSV writes a header taken from the first record followed by one row per
// record. Every record must carry the same keys in the same order. An empty
// input produces an empty string with no header.
func ToCSV(records []Record) (string, error) {
	if len(records) == 0 {
		return "", nil
	}

	header := records[0].Keys()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(header))
	for i, rec := range records {
		if !sameKeys(header, rec) {
			return "", fmt.Errorf("record %d: %w", i, ErrSchemaMismatch)
		}
		for j, f := range rec {
			row[j] = cell(f.Value)
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write record %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return buf.String(), nil
}

func sameKeys(header []string, rec Record) bool {
	if len(rec) != len(header) {
		return false
	}
	for i, f := range rec {
		if f.Key != header[i] {
			return false
		}
	}
	return true
}

func cell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// Package store persists users and data entries. A Store wraps either the
// database handle or a transaction, so handlers decide the transaction scope.
package store

import (
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrUnknownUser    = errors.New("referenced user does not exist")
	ErrUserHasEntries = errors.New("user still owns data entries")
)

// Store runs queries against db or tx.
type Store struct {
	q sqlx.ExtContext
}

// New constructs a Store.
func New(q sqlx.ExtContext) *Store {
	return &Store{q: q}
}

func (s *Store) rebind(query string) string {
	return s.q.Rebind(query)
}

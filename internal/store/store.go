// Package store is the persistence layer over Postgres. Methods execute the
// prepared statements registered in internal/db; heats, score sheets and
// discrepancies persist as JSONB.
package store

import (
	"errors"

	"github.com/Jakkmalm/speedway-protocol/internal/db"
)

// Sentinel errors mapped to HTTP statuses by the API layer.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// Store bundles the connection pool for all persistence methods.
type Store struct {
	pool *db.Pool
}

// New creates a Store over an established pool.
func New(pool *db.Pool) *Store {
	return &Store{pool: pool}
}

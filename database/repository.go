package database

import (
	"context"
	"errors"
)

// ErrNoteNotFound is returned when a note id has no matching row.
var ErrNoteNotFound = errors.New("note not found")

// Repository translates note CRUD intents into SQL. It owns no business
// logic beyond existence checks.
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Ping verifies database connectivity, used by the detailed health check.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"notes-api/models"
)

// ListNotes returns notes ordered newest first (id as tiebreak so the order
// is stable), skipping offset rows and returning at most limit.
func (r *Repository) ListNotes(ctx context.Context, offset, limit int) ([]models.Note, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, content, created_at, updated_at
		FROM notes
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]models.Note, 0, limit)
	for rows.Next() {
		var note models.Note
		if err := rows.Scan(
			&note.ID, &note.Title, &note.Content, &note.CreatedAt, &note.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, note)
	}

	return notes, rows.Err()
}

// GetNote retrieves a single note by id.
func (r *Repository) GetNote(ctx context.Context, id int64) (*models.Note, error) {
	var note models.Note
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, content, created_at, updated_at
		FROM notes
		WHERE id = $1
	`, id).Scan(&note.ID, &note.Title, &note.Content, &note.CreatedAt, &note.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get note %d: %w", id, err)
	}

	return &note, nil
}

// CreateNote inserts a new note and returns it with its generated id.
func (r *Repository) CreateNote(ctx context.Context, title, content string) (*models.Note, error) {
	now := time.Now().UTC()
	note := models.Note{
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO notes (title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, title, content, now, now).Scan(&note.ID)
	if err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}

	return &note, nil
}

// ReplaceNote overwrites both mutable fields of an existing note.
func (r *Repository) ReplaceNote(ctx context.Context, id int64, title, content string) (*models.Note, error) {
	var note models.Note
	// Placeholders in first-occurrence order: the sqlite3 driver numbers $N
	// parameters by occurrence, not by index.
	err := r.db.QueryRowContext(ctx, `
		UPDATE notes
		SET title = $1, content = $2, updated_at = $3
		WHERE id = $4
		RETURNING id, title, content, created_at, updated_at
	`, title, content, time.Now().UTC(), id).Scan(
		&note.ID, &note.Title, &note.Content, &note.CreatedAt, &note.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("replace note %d: %w", id, err)
	}

	return &note, nil
}

// PatchNote overwrites only the supplied fields of an existing note. Nil
// fields keep their current value.
func (r *Repository) PatchNote(ctx context.Context, id int64, title, content *string) (*models.Note, error) {
	var note models.Note
	err := r.db.QueryRowContext(ctx, `
		UPDATE notes
		SET title = COALESCE($1, title),
		    content = COALESCE($2, content),
		    updated_at = $3
		WHERE id = $4
		RETURNING id, title, content, created_at, updated_at
	`, title, content, time.Now().UTC(), id).Scan(
		&note.ID, &note.Title, &note.Content, &note.CreatedAt, &note.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patch note %d: %w", id, err)
	}

	return &note, nil
}

// DeleteNote permanently removes a note. Deleting an absent id reports
// ErrNoteNotFound, so a second delete fails the same way.
func (r *Repository) DeleteNote(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete note %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNoteNotFound
	}

	return nil
}

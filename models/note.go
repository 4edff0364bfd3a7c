package models

import "time"

// Note is the single persisted entity: a titled text record.
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateNoteRequest is the payload for POST and PUT (full replace).
type CreateNoteRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=255"`
	Content string `json:"content" validate:"max=10000"`
}

// PatchNoteRequest is the payload for PATCH. Nil fields are left unchanged.
type PatchNoteRequest struct {
	Title   *string `json:"title" validate:"omitnil,min=1,max=255"`
	Content *string `json:"content" validate:"omitnil,max=10000"`
}

package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"notes-api/app"
	"notes-api/database"
	"notes-api/models"
)

// Pagination bounds for list requests
const (
	DefaultPageSize = 100
	MaxPageSize     = 100
	MinPageSize     = 1
)

func noteID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, errors.New("id must be an integer")
	}
	return id, nil
}

func noteNotFound(c *fiber.Ctx, id int64) error {
	return notFound(c, fmt.Sprintf("Note with ID %d not found", id))
}

// ListNotes returns a paginated list of notes, newest first
func ListNotes(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", DefaultPageSize)
		offset := c.QueryInt("offset", 0)

		if limit < MinPageSize || limit > MaxPageSize {
			limit = DefaultPageSize
		}
		if offset < 0 {
			offset = 0
		}

		notes, err := a.Repo.ListNotes(c.UserContext(), offset, limit)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to fetch notes", err)
		}

		return success(c, notes)
	}
}

// GetNote retrieves a single note by its id
func GetNote(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := noteID(c)
		if err != nil {
			return unprocessable(c, err)
		}

		note, err := a.Repo.GetNote(c.UserContext(), id)
		if errors.Is(err, database.ErrNoteNotFound) {
			return noteNotFound(c, id)
		}
		if err != nil {
			return serverErrorWithDetails(c, "Failed to fetch note", err)
		}

		return success(c, note)
	}
}

// CreateNote creates a new note from a title and optional content
func CreateNote(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.CreateNoteRequest
		if err := c.BodyParser(&req); err != nil {
			return unprocessable(c, errors.New("invalid request body"))
		}
		if err := a.Validator.Validate(req); err != nil {
			return unprocessable(c, err)
		}

		note, err := a.Repo.CreateNote(c.UserContext(), req.Title, req.Content)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to create note", err)
		}

		return created(c, note)
	}
}

// ReplaceNote fully replaces an existing note (all fields required)
func ReplaceNote(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := noteID(c)
		if err != nil {
			return unprocessable(c, err)
		}

		var req models.CreateNoteRequest
		if err := c.BodyParser(&req); err != nil {
			return unprocessable(c, errors.New("invalid request body"))
		}
		if err := a.Validator.Validate(req); err != nil {
			return unprocessable(c, err)
		}

		note, err := a.Repo.ReplaceNote(c.UserContext(), id, req.Title, req.Content)
		if errors.Is(err, database.ErrNoteNotFound) {
			return noteNotFound(c, id)
		}
		if err != nil {
			return serverErrorWithDetails(c, "Failed to update note", err)
		}

		return success(c, note)
	}
}

// PatchNote updates only the fields supplied in the request body
func PatchNote(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := noteID(c)
		if err != nil {
			return unprocessable(c, err)
		}

		var req models.PatchNoteRequest
		if err := c.BodyParser(&req); err != nil {
			return unprocessable(c, errors.New("invalid request body"))
		}
		if err := a.Validator.Validate(req); err != nil {
			return unprocessable(c, err)
		}

		note, err := a.Repo.PatchNote(c.UserContext(), id, req.Title, req.Content)
		if errors.Is(err, database.ErrNoteNotFound) {
			return noteNotFound(c, id)
		}
		if err != nil {
			return serverErrorWithDetails(c, "Failed to update note", err)
		}

		return success(c, note)
	}
}

// DeleteNote removes a note permanently
func DeleteNote(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := noteID(c)
		if err != nil {
			return unprocessable(c, err)
		}

		err = a.Repo.DeleteNote(c.UserContext(), id)
		if errors.Is(err, database.ErrNoteNotFound) {
			return noteNotFound(c, id)
		}
		if err != nil {
			return serverErrorWithDetails(c, "Failed to delete note", err)
		}

		return noContent(c)
	}
}

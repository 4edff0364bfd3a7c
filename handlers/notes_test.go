package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notes-api/app"
	"notes-api/config"
	"notes-api/database"
	"notes-api/handlers"
	"notes-api/models"
)

// setupTestServer creates a Fiber app backed by a temporary SQLite database,
// with the same routes the real server registers
func setupTestServer(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver:       "sqlite3",
		DSN:          filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
		PingAttempts: 1,
	}

	ctx := context.Background()
	db, err := database.New(ctx, cfg)
	require.NoError(t, err, "Failed to initialize test database")
	require.NoError(t, db.Migrate(ctx), "Failed to run migrations")
	t.Cleanup(func() { db.Close() })

	repo := database.NewRepository(db)
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	application := app.New(repo, logger)

	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	fiberApp.Get("/", handlers.Root())
	fiberApp.Get("/health", handlers.Health())
	fiberApp.Get("/health/detailed", handlers.DetailedHealth(application))

	v1 := fiberApp.Group("/v1")
	v1.Get("/notes", handlers.ListNotes(application))
	v1.Post("/notes", handlers.CreateNote(application))
	v1.Get("/notes/:id", handlers.GetNote(application))
	v1.Put("/notes/:id", handlers.ReplaceNote(application))
	v1.Patch("/notes/:id", handlers.PatchNote(application))
	v1.Delete("/notes/:id", handlers.DeleteNote(application))

	return fiberApp
}

func doJSON(t *testing.T, fiberApp *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := fiberApp.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeNote(t *testing.T, resp *http.Response) models.Note {
	t.Helper()

	var note models.Note
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&note))
	return note
}

func createNote(t *testing.T, fiberApp *fiber.App, title, content string) models.Note {
	t.Helper()

	resp := doJSON(t, fiberApp, http.MethodPost, "/v1/notes", models.CreateNoteRequest{
		Title:   title,
		Content: content,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeNote(t, resp)
}

func TestCreateNote(t *testing.T) {
	fiberApp := setupTestServer(t)

	resp := doJSON(t, fiberApp, http.MethodPost, "/v1/notes", models.CreateNoteRequest{
		Title:   "My First Note",
		Content: "This is the content of my note",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	note := decodeNote(t, resp)
	assert.Greater(t, note.ID, int64(0))
	assert.Equal(t, "My First Note", note.Title)
	assert.Equal(t, "This is the content of my note", note.Content)
	assert.False(t, note.CreatedAt.IsZero())

	// Fetching by the returned id yields the same title/content
	resp = doJSON(t, fiberApp, http.MethodGet, fmt.Sprintf("/v1/notes/%d", note.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	fetched := decodeNote(t, resp)
	assert.Equal(t, note.ID, fetched.ID)
	assert.Equal(t, note.Title, fetched.Title)
	assert.Equal(t, note.Content, fetched.Content)
}

func TestCreateNote_Validation(t *testing.T) {
	fiberApp := setupTestServer(t)

	longTitle := make([]byte, 256)
	for i := range longTitle {
		longTitle[i] = 'a'
	}

	tests := []struct {
		name string
		body interface{}
	}{
		{"Missing title", map[string]string{"content": "no title"}},
		{"Empty title", map[string]string{"title": ""}},
		{"Title too long", map[string]string{"title": string(longTitle)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, fiberApp, http.MethodPost, "/v1/notes", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body["error"])
		})
	}

	// Malformed JSON is rejected the same way
	req := httptest.NewRequest(http.MethodPost, "/v1/notes", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := fiberApp.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	// No row was written by any of the rejected payloads
	resp = doJSON(t, fiberApp, http.MethodGet, "/v1/notes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var notes []models.Note
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&notes))
	assert.Empty(t, notes)
}

func TestGetNote_NotFound(t *testing.T) {
	fiberApp := setupTestServer(t)

	resp := doJSON(t, fiberApp, http.MethodGet, "/v1/notes/9999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "Note with ID 9999 not found")
}

func TestGetNote_InvalidID(t *testing.T) {
	fiberApp := setupTestServer(t)

	resp := doJSON(t, fiberApp, http.MethodGet, "/v1/notes/abc", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestListNotes(t *testing.T) {
	fiberApp := setupTestServer(t)

	first := createNote(t, fiberApp, "first", "")
	second := createNote(t, fiberApp, "second", "")
	third := createNote(t, fiberApp, "third", "")

	// Default listing returns everything, newest first
	resp := doJSON(t, fiberApp, http.MethodGet, "/v1/notes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var notes []models.Note
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&notes))
	require.Len(t, notes, 3)
	assert.Equal(t, third.ID, notes[0].ID)
	assert.Equal(t, second.ID, notes[1].ID)
	assert.Equal(t, first.ID, notes[2].ID)

	// limit bounds the result
	resp = doJSON(t, fiberApp, http.MethodGet, "/v1/notes?limit=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	notes = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&notes))
	require.Len(t, notes, 2)
	assert.Equal(t, third.ID, notes[0].ID)

	// offset skips exactly that many in the same order
	resp = doJSON(t, fiberApp, http.MethodGet, "/v1/notes?offset=2&limit=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	notes = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&notes))
	require.Len(t, notes, 1)
	assert.Equal(t, first.ID, notes[0].ID)

	// Out-of-range values fall back to defaults instead of failing
	resp = doJSON(t, fiberApp, http.MethodGet, "/v1/notes?offset=-1&limit=0", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	notes = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&notes))
	assert.Len(t, notes, 3)
}

func TestReplaceNote(t *testing.T) {
	fiberApp := setupTestServer(t)

	note := createNote(t, fiberApp, "old title", "old content")

	resp := doJSON(t, fiberApp, http.MethodPut, fmt.Sprintf("/v1/notes/%d", note.ID), models.CreateNoteRequest{
		Title:   "new title",
		Content: "new content",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	updated := decodeNote(t, resp)
	assert.Equal(t, note.ID, updated.ID)
	assert.Equal(t, "new title", updated.Title)
	assert.Equal(t, "new content", updated.Content)

	// Replacing with an empty content erases it (full replace)
	resp = doJSON(t, fiberApp, http.MethodPut, fmt.Sprintf("/v1/notes/%d", note.ID), models.CreateNoteRequest{
		Title: "new title",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated = decodeNote(t, resp)
	assert.Equal(t, "", updated.Content)
}

func TestReplaceNote_Errors(t *testing.T) {
	fiberApp := setupTestServer(t)

	// Unknown id
	resp := doJSON(t, fiberApp, http.MethodPut, "/v1/notes/9999", models.CreateNoteRequest{Title: "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Missing required title
	note := createNote(t, fiberApp, "title", "content")
	resp = doJSON(t, fiberApp, http.MethodPut, fmt.Sprintf("/v1/notes/%d", note.ID), map[string]string{"content": "only"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestPatchNote(t *testing.T) {
	fiberApp := setupTestServer(t)

	note := createNote(t, fiberApp, "keep me", "old content")

	// Only the supplied field changes
	resp := doJSON(t, fiberApp, http.MethodPatch, fmt.Sprintf("/v1/notes/%d", note.ID), map[string]string{
		"content": "new content",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	patched := decodeNote(t, resp)
	assert.Equal(t, "keep me", patched.Title)
	assert.Equal(t, "new content", patched.Content)

	// Empty body changes nothing
	resp = doJSON(t, fiberApp, http.MethodPatch, fmt.Sprintf("/v1/notes/%d", note.ID), map[string]string{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	patched = decodeNote(t, resp)
	assert.Equal(t, "keep me", patched.Title)
	assert.Equal(t, "new content", patched.Content)
}

func TestPatchNote_Errors(t *testing.T) {
	fiberApp := setupTestServer(t)

	// Unknown id
	resp := doJSON(t, fiberApp, http.MethodPatch, "/v1/notes/9999", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Explicit empty title is rejected
	note := createNote(t, fiberApp, "title", "")
	resp = doJSON(t, fiberApp, http.MethodPatch, fmt.Sprintf("/v1/notes/%d", note.ID), map[string]string{"title": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDeleteNote(t *testing.T) {
	fiberApp := setupTestServer(t)

	note := createNote(t, fiberApp, "doomed", "")

	resp := doJSON(t, fiberApp, http.MethodDelete, fmt.Sprintf("/v1/notes/%d", note.ID), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Fetching it afterwards yields NotFound
	resp = doJSON(t, fiberApp, http.MethodGet, fmt.Sprintf("/v1/notes/%d", note.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Second delete also reports NotFound
	resp = doJSON(t, fiberApp, http.MethodDelete, fmt.Sprintf("/v1/notes/%d", note.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

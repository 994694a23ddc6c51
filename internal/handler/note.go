package handler

import (
	"log/slog"
	"net/http"

	"quill/internal/domain/services"
	"quill/internal/httputil"
)

// NoteHandler handles note HTTP requests
type NoteHandler struct {
	noteService services.NoteService
	logger      *slog.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteService services.NoteService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		logger:      logger,
	}
}

// HealthCheck reports service liveness
// GET /health
func (h *NoteHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateNote creates a new note
// POST /api/notes
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req services.CreateNoteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := h.noteService.CreateNote(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, note)
}

// GetNote retrieves a note by ID
// GET /api/notes/{id}
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	note, err := h.noteService.GetNote(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, note)
}

// ListNotes lists accessible notes in a workspace, optionally scoped to a
// folder's subtree
// GET /api/workspaces/{id}/notes?folder_id={folderId}
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	workspaceID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	req := services.ListNotesRequest{WorkspaceID: workspaceID}
	if raw := r.URL.Query().Get("folder_id"); raw != "" {
		id, err := parseUUID(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "invalid folder_id")
			return
		}
		req.FolderID = &id
	}

	notes, err := h.noteService.ListNotes(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, notes)
}

// UpdateNote updates a note's title, content or folder
// PATCH /api/notes/{id}
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.UpdateNoteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := h.noteService.UpdateNote(r.Context(), userID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, note)
}

// DeleteNote soft-deletes a note
// DELETE /api/notes/{id}
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.noteService.DeleteNote(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

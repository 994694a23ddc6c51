package handler

import (
	"log/slog"
	"net/http"

	"quill/internal/domain/services"
	"quill/internal/httputil"
)

// CommentHandler handles comment HTTP requests
type CommentHandler struct {
	commentService services.CommentService
	logger         *slog.Logger
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentService services.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		logger:         logger,
	}
}

// CreateComment creates a comment or reply on a note
// POST /api/notes/{id}/comments
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	noteID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.CreateCommentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.NoteID = noteID

	comment, err := h.commentService.CreateComment(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, comment)
}

// ListComments lists live comments on a note
// GET /api/notes/{id}/comments
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	noteID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	comments, err := h.commentService.ListComments(r.Context(), userID, noteID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, comments)
}

// UpdateComment edits a comment's text
// PATCH /api/comments/{id}
func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.UpdateCommentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := h.commentService.UpdateComment(r.Context(), userID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, comment)
}

// SetResolved toggles a comment's resolved flag
// PUT /api/comments/{id}/resolved
func (h *CommentHandler) SetResolved(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Resolved bool `json:"resolved"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := h.commentService.SetResolved(r.Context(), userID, id, req.Resolved)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, comment)
}

// DeleteComment soft-deletes a comment and its reply thread
// DELETE /api/comments/{id}
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.commentService.DeleteComment(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

package handler

import (
	"log/slog"
	"net/http"

	"quill/internal/domain/services"
	"quill/internal/httputil"
)

// WorkspaceHandler handles workspace and membership HTTP requests
type WorkspaceHandler struct {
	workspaceService services.WorkspaceService
	logger           *slog.Logger
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(workspaceService services.WorkspaceService, logger *slog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		logger:           logger,
	}
}

// CreateWorkspace creates a new workspace
// POST /api/workspaces
func (h *WorkspaceHandler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req services.CreateWorkspaceRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	workspace, err := h.workspaceService.CreateWorkspace(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, workspace)
}

// ListWorkspaces lists workspaces visible to the user
// GET /api/workspaces
func (h *WorkspaceHandler) ListWorkspaces(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	workspaces, err := h.workspaceService.ListWorkspaces(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, workspaces)
}

// GetWorkspace retrieves a workspace by ID
// GET /api/workspaces/{id}
func (h *WorkspaceHandler) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	workspace, err := h.workspaceService.GetWorkspace(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, workspace)
}

// UpdateWorkspace renames a workspace
// PATCH /api/workspaces/{id}
func (h *WorkspaceHandler) UpdateWorkspace(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.UpdateWorkspaceRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	workspace, err := h.workspaceService.UpdateWorkspace(r.Context(), userID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, workspace)
}

// DeleteWorkspace soft-deletes a workspace
// DELETE /api/workspaces/{id}
func (h *WorkspaceHandler) DeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.workspaceService.DeleteWorkspace(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// ListMembers lists a workspace's members
// GET /api/workspaces/{id}/members
func (h *WorkspaceHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	members, err := h.workspaceService.ListMembers(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, members)
}

// AddMember adds a member to a workspace
// POST /api/workspaces/{id}/members
func (h *WorkspaceHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.AddMemberRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	membership, err := h.workspaceService.AddMember(r.Context(), userID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, membership)
}

// UpdateMemberRole changes a member's role
// PATCH /api/workspaces/{id}/members/{userId}
func (h *WorkspaceHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	memberID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	var req services.UpdateMemberRoleRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.workspaceService.UpdateMemberRole(r.Context(), userID, id, memberID, &req); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// RemoveMember removes a member from a workspace
// DELETE /api/workspaces/{id}/members/{userId}
func (h *WorkspaceHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	memberID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	if err := h.workspaceService.RemoveMember(r.Context(), userID, id, memberID); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

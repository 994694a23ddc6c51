package handler

import (
	"log/slog"
	"net/http"

	"quill/internal/domain/services"
	"quill/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService services.FolderService
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService services.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		logger:        logger,
	}
}

// CreateFolder creates a new folder
// POST /api/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req services.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, err := h.folderService.CreateFolder(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// GetFolder retrieves a folder by ID
// GET /api/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	folder, err := h.folderService.GetFolder(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// ListFolders lists the accessible children of a folder, or the workspace
// root when no parent_id query parameter is given
// GET /api/workspaces/{id}/folders?parent_id={folderId}
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	workspaceID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var parentID *string
	if raw := r.URL.Query().Get("parent_id"); raw != "" {
		id, err := parseUUID(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "invalid parent_id")
			return
		}
		parentID = &id
	}

	folders, err := h.folderService.ListChildren(r.Context(), userID, workspaceID, parentID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folders)
}

// UpdateFolder renames or moves a folder
// PATCH /api/folders/{id}
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.UpdateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, err := h.folderService.UpdateFolder(r.Context(), userID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// SetPrivacy toggles a folder's privacy flag
// PUT /api/folders/{id}/privacy
func (h *FolderHandler) SetPrivacy(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		IsPrivate bool `json:"is_private"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, err := h.folderService.SetPrivacy(r.Context(), userID, id, req.IsPrivate)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// ListPermissions lists a folder's per-user grants
// GET /api/folders/{id}/permissions
func (h *FolderHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	perms, err := h.folderService.ListPermissions(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, perms)
}

// SetPermission creates or updates a per-user grant on a folder
// PUT /api/folders/{id}/permissions
func (h *FolderHandler) SetPermission(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.SetFolderPermissionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	perm, err := h.folderService.SetPermission(r.Context(), userID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, perm)
}

// RemovePermission deletes a per-user grant from a folder
// DELETE /api/folders/{id}/permissions/{userId}
func (h *FolderHandler) RemovePermission(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	granteeID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	if err := h.folderService.RemovePermission(r.Context(), userID, id, granteeID); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// DeleteFolder soft-deletes a folder and its subtree
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.folderService.DeleteFolder(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

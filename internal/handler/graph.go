package handler

import (
	"log/slog"
	"net/http"

	"quill/internal/domain/services"
	"quill/internal/httputil"
)

// GraphHandler serves the workspace visualization graph
type GraphHandler struct {
	graphService services.GraphService
	logger       *slog.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(graphService services.GraphService, logger *slog.Logger) *GraphHandler {
	return &GraphHandler{
		graphService: graphService,
		logger:       logger,
	}
}

// GetGraph returns the folder/note graph for a workspace
// GET /api/workspaces/{id}/graph?folder_id={folderId}
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	workspaceID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var folderID *string
	if raw := r.URL.Query().Get("folder_id"); raw != "" {
		id, err := parseUUID(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "invalid folder_id")
			return
		}
		folderID = &id
	}

	graph, err := h.graphService.GetGraph(r.Context(), userID, workspaceID, folderID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, graph)
}

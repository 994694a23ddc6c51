package service

import (
	"context"
	"fmt"
	"log/slog"

	"quill/internal/authz"
	"quill/internal/domain"
	"quill/internal/domain/repositories"
	"quill/internal/domain/services"
)

type graphService struct {
	folderRepo repositories.FolderRepository
	noteRepo   repositories.NoteRepository
	authorizer services.Authorizer
	logger     *slog.Logger
}

// NewGraphService creates a new graph service
func NewGraphService(
	folderRepo repositories.FolderRepository,
	noteRepo repositories.NoteRepository,
	authorizer services.Authorizer,
	logger *slog.Logger,
) services.GraphService {
	return &graphService{
		folderRepo: folderRepo,
		noteRepo:   noteRepo,
		authorizer: authorizer,
		logger:     logger,
	}
}

// GetGraph returns the folder/note graph visible to the user. Nodes inside
// the scope folder's subtree (when given) are marked in-scope.
func (s *graphService) GetGraph(ctx context.Context, userID, workspaceID string, folderID *string) (*services.Graph, error) {
	ok, err := s.authorizer.CanAccessWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.ForbiddenError{Message: fmt.Sprintf("access denied to workspace %s", workspaceID)}
	}

	accessible, err := s.authorizer.AccessibleFolderIDs(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}

	folders, err := s.folderRepo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	notes, err := s.noteRepo.ListByWorkspace(ctx, workspaceID, nil)
	if err != nil {
		return nil, err
	}

	// Scope: the filter folder plus every visible descendant. With no filter
	// everything visible is in scope.
	var scope map[string]struct{}
	if folderID != nil {
		if _, ok := accessible[*folderID]; !ok {
			return nil, &domain.ForbiddenError{Message: fmt.Sprintf("access denied to folder %s", *folderID)}
		}

		childrenByParent := make(map[string][]string)
		for _, f := range folders {
			if _, ok := accessible[f.ID]; !ok {
				continue
			}
			if f.ParentID != nil {
				childrenByParent[*f.ParentID] = append(childrenByParent[*f.ParentID], f.ID)
			}
		}

		scope = authz.DescendantsOf([]string{*folderID}, childrenByParent)
		scope[*folderID] = struct{}{}
	}

	inScope := func(containerID *string, selfID string) bool {
		if scope == nil {
			return true
		}
		if _, ok := scope[selfID]; ok {
			return true
		}
		if containerID != nil {
			_, ok := scope[*containerID]
			return ok
		}
		return false
	}

	graph := &services.Graph{
		Nodes: make([]services.GraphNode, 0, len(folders)+len(notes)),
		Edges: make([]services.GraphEdge, 0, len(folders)+len(notes)),
	}

	for _, folder := range folders {
		if _, ok := accessible[folder.ID]; !ok {
			continue
		}

		node := services.GraphNode{
			ID:       folder.ID,
			Kind:     "folder",
			Label:    folder.Name,
			ParentID: folder.ParentID,
			InScope:  inScope(nil, folder.ID),
		}
		graph.Nodes = append(graph.Nodes, node)

		// Edge to the parent only when the parent itself is visible
		if folder.ParentID != nil {
			if _, ok := accessible[*folder.ParentID]; ok {
				graph.Edges = append(graph.Edges, services.GraphEdge{From: folder.ID, To: *folder.ParentID})
			}
		}
	}

	for _, note := range notes {
		if note.FolderID != nil {
			if _, ok := accessible[*note.FolderID]; !ok {
				continue
			}
		}

		node := services.GraphNode{
			ID:       note.ID,
			Kind:     "note",
			Label:    note.Title,
			ParentID: note.FolderID,
			InScope:  inScope(note.FolderID, note.ID),
		}
		graph.Nodes = append(graph.Nodes, node)

		if note.FolderID != nil {
			graph.Edges = append(graph.Edges, services.GraphEdge{From: note.ID, To: *note.FolderID})
		}
	}

	s.logger.Debug("graph built",
		"workspace_id", workspaceID,
		"nodes", len(graph.Nodes),
		"edges", len(graph.Edges),
	)

	return graph, nil
}

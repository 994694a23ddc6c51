package services

import (
	"context"
)

// GraphService builds the note/folder visualization graph for a workspace
type GraphService interface {
	// GetGraph returns the graph of folders and notes visible to the user.
	// When folderID is set, nodes inside that folder's subtree are marked
	// in-scope and everything else out-of-scope.
	GetGraph(ctx context.Context, userID, workspaceID string, folderID *string) (*Graph, error)
}

// Graph is the visualization payload
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// GraphNode is a folder or note vertex
type GraphNode struct {
	ID       string  `json:"id"`
	Kind     string  `json:"kind"` // "folder" or "note"
	Label    string  `json:"label"`
	ParentID *string `json:"parent_id,omitempty"` // containing folder
	InScope  bool    `json:"in_scope"`
}

// GraphEdge is a containment edge (child → parent folder)
type GraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

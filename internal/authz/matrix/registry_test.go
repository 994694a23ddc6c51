package matrix

import (
	"testing"

	"quill/internal/domain/models"
)

func TestNewRegistry(t *testing.T) {
	if _, err := NewRegistry(); err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
}

func TestRegistryAllows(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	tests := []struct {
		name   string
		role   models.Role
		action Action
		want   bool
	}{
		{name: "owner manages workspace", role: models.RoleOwner, action: ActionManageWorkspace, want: true},
		{name: "owner deletes notes", role: models.RoleOwner, action: ActionDeleteNotes, want: true},
		{name: "admin manages workspace", role: models.RoleAdmin, action: ActionManageWorkspace, want: true},
		{name: "admin deletes notes", role: models.RoleAdmin, action: ActionDeleteNotes, want: true},
		{name: "editor edits notes", role: models.RoleEditor, action: ActionEditNotes, want: true},
		{name: "editor cannot delete notes", role: models.RoleEditor, action: ActionDeleteNotes, want: false},
		{name: "editor cannot manage workspace", role: models.RoleEditor, action: ActionManageWorkspace, want: false},
		{name: "editor edits folders", role: models.RoleEditor, action: ActionEditFolder, want: true},
		{name: "editor cannot manage folders", role: models.RoleEditor, action: ActionManageFolder, want: false},
		{name: "viewer accesses workspace", role: models.RoleViewer, action: ActionAccessWorkspace, want: true},
		{name: "viewer cannot edit notes", role: models.RoleViewer, action: ActionEditNotes, want: false},
		{name: "none allows nothing", role: models.RoleNone, action: ActionAccessWorkspace, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := registry.Allows(tt.role, tt.action); got != tt.want {
				t.Errorf("Allows(%v, %v) = %v, want %v", tt.role, tt.action, got, tt.want)
			}
		})
	}
}

// Deleting notes is a management-tier action: the two gates must stay in
// lockstep for every role.
func TestDeleteMatchesManage(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	for _, role := range []models.Role{models.RoleOwner, models.RoleAdmin, models.RoleEditor, models.RoleViewer} {
		manage := registry.Allows(role, ActionManageWorkspace)
		del := registry.Allows(role, ActionDeleteNotes)
		if manage != del {
			t.Errorf("role %v: manage=%v but delete=%v", role, manage, del)
		}
	}
}

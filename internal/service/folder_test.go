package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"testing"

	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/services"
	"quill/internal/httputil"
)

func newFolderFixture(auth *stubAuthorizer, folders ...*models.Folder) (services.FolderService, *memFolderRepo, *memGrantRepo, *memNoteRepo) {
	folderRepo := &memFolderRepo{byID: map[string]*models.Folder{}}
	for _, f := range folders {
		folderRepo.byID[f.ID] = f
	}
	grantRepo := &memGrantRepo{}
	noteRepo := &memNoteRepo{byID: map[string]*models.Note{}}
	svc := NewFolderService(folderRepo, grantRepo, noteRepo, passthroughTx{}, auth, slog.Default())
	return svc, folderRepo, grantRepo, noteRepo
}

func wsPtr(s string) *string { return &s }

func TestUpdateFolderRejectsCycle(t *testing.T) {
	// a -> b -> c; moving a under c (or under itself) must fail
	a := &models.Folder{ID: "a", WorkspaceID: wsPtr("ws"), CreatorID: "u", Name: "A"}
	b := &models.Folder{ID: "b", WorkspaceID: wsPtr("ws"), CreatorID: "u", ParentID: wsPtr("a"), Name: "B"}
	c := &models.Folder{ID: "c", WorkspaceID: wsPtr("ws"), CreatorID: "u", ParentID: wsPtr("b"), Name: "C"}
	svc, _, _, _ := newFolderFixture(&stubAuthorizer{editFolder: true}, a, b, c)

	tests := []struct {
		name      string
		folderID  string
		newParent string
	}{
		{name: "into own descendant", folderID: "a", newParent: "c"},
		{name: "into direct child", folderID: "a", newParent: "b"},
		{name: "into itself", folderID: "a", newParent: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent := tt.newParent
			_, err := svc.UpdateFolder(context.Background(), "u", tt.folderID, &services.UpdateFolderRequest{
				ParentID: httputil.OptionalString{Present: true, Value: &parent},
			})
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUpdateFolderMoveToRoot(t *testing.T) {
	a := &models.Folder{ID: "a", WorkspaceID: wsPtr("ws"), CreatorID: "u", Name: "A"}
	b := &models.Folder{ID: "b", WorkspaceID: wsPtr("ws"), CreatorID: "u", ParentID: wsPtr("a"), Name: "B"}
	svc, _, _, _ := newFolderFixture(&stubAuthorizer{editFolder: true}, a, b)

	got, err := svc.UpdateFolder(context.Background(), "u", "b", &services.UpdateFolderRequest{
		ParentID: httputil.OptionalString{Present: true, Value: nil},
	})
	if err != nil {
		t.Fatalf("UpdateFolder: %v", err)
	}
	if got.ParentID != nil {
		t.Errorf("expected root placement, got parent %v", *got.ParentID)
	}
}

func TestUpdateFolderAbsentParentKeepsLocation(t *testing.T) {
	a := &models.Folder{ID: "a", WorkspaceID: wsPtr("ws"), CreatorID: "u", Name: "A"}
	b := &models.Folder{ID: "b", WorkspaceID: wsPtr("ws"), CreatorID: "u", ParentID: wsPtr("a"), Name: "B"}
	svc, _, _, _ := newFolderFixture(&stubAuthorizer{editFolder: true}, a, b)

	name := "Renamed"
	got, err := svc.UpdateFolder(context.Background(), "u", "b", &services.UpdateFolderRequest{
		Name: &name,
	})
	if err != nil {
		t.Fatalf("UpdateFolder: %v", err)
	}
	if got.ParentID == nil || *got.ParentID != "a" {
		t.Error("rename must not move the folder")
	}
	if got.Name != "Renamed" {
		t.Errorf("name = %q", got.Name)
	}
}

func TestCreateFolderDuplicateSiblingName(t *testing.T) {
	existing := &models.Folder{ID: "a", WorkspaceID: wsPtr("ws"), CreatorID: "u", Name: "Specs"}
	svc, _, _, _ := newFolderFixture(&stubAuthorizer{editNotes: true}, existing)

	_, err := svc.CreateFolder(context.Background(), "u", &services.CreateFolderRequest{
		WorkspaceID: "ws",
		Name:        "Specs",
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict for duplicate sibling name, got %v", err)
	}
}

func TestCreateFolderPrivateRequiresManagement(t *testing.T) {
	svc, _, _, _ := newFolderFixture(&stubAuthorizer{editNotes: true, manageWorkspace: false})

	_, err := svc.CreateFolder(context.Background(), "u", &services.CreateFolderRequest{
		WorkspaceID: "ws",
		Name:        "Drafts",
		IsPrivate:   true,
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for non-manager private creation, got %v", err)
	}
}

func TestDeleteFolderCascades(t *testing.T) {
	// root -> mid -> leaf, plus an unrelated sibling tree
	root := &models.Folder{ID: "root", WorkspaceID: wsPtr("ws"), CreatorID: "u", Name: "Root"}
	mid := &models.Folder{ID: "mid", WorkspaceID: wsPtr("ws"), CreatorID: "u", ParentID: wsPtr("root"), Name: "Mid"}
	leaf := &models.Folder{ID: "leaf", WorkspaceID: wsPtr("ws"), CreatorID: "u", ParentID: wsPtr("mid"), Name: "Leaf"}
	other := &models.Folder{ID: "other", WorkspaceID: wsPtr("ws"), CreatorID: "u", Name: "Other"}
	svc, folderRepo, _, noteRepo := newFolderFixture(&stubAuthorizer{manageFolder: true}, root, mid, leaf, other)

	if err := svc.DeleteFolder(context.Background(), "u", "root"); err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}

	want := []string{"leaf", "mid", "root"}

	gotFolders := append([]string(nil), folderRepo.softDeleted...)
	sort.Strings(gotFolders)
	if len(gotFolders) != len(want) {
		t.Fatalf("soft-deleted folders = %v, want %v", gotFolders, want)
	}
	for i, id := range want {
		if gotFolders[i] != id {
			t.Fatalf("soft-deleted folders = %v, want %v", gotFolders, want)
		}
	}

	gotNotes := append([]string(nil), noteRepo.deletedByFolders...)
	sort.Strings(gotNotes)
	if len(gotNotes) != len(want) {
		t.Fatalf("note cascade folders = %v, want %v", gotNotes, want)
	}

	for _, id := range gotFolders {
		if id == "other" {
			t.Error("unrelated folder must survive the cascade")
		}
	}
}

func TestSetPermissionRejectsOwnerRole(t *testing.T) {
	folder := &models.Folder{ID: "f", WorkspaceID: wsPtr("ws"), CreatorID: "u", Name: "F"}
	svc, _, grantRepo, _ := newFolderFixture(&stubAuthorizer{manageFolder: true}, folder)

	_, err := svc.SetPermission(context.Background(), "u", "f", &services.SetFolderPermissionRequest{
		UserID: "grantee",
		Role:   "OWNER",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for OWNER grant, got %v", err)
	}
	if len(grantRepo.upserted) != 0 {
		t.Error("grant must not be stored")
	}
}

func TestSetPermissionRequiresManagement(t *testing.T) {
	folder := &models.Folder{ID: "f", WorkspaceID: wsPtr("ws"), CreatorID: "u", Name: "F"}
	svc, _, _, _ := newFolderFixture(&stubAuthorizer{manageFolder: false}, folder)

	_, err := svc.SetPermission(context.Background(), "editor", "f", &services.SetFolderPermissionRequest{
		UserID: "grantee",
		Role:   "EDITOR",
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

package authz

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"quill/internal/authz/matrix"
	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/services"
)

type fakeWorkspaceRepo struct {
	byID map[string]*models.Workspace
}

func (f *fakeWorkspaceRepo) Create(ctx context.Context, w *models.Workspace) error { return nil }
func (f *fakeWorkspaceRepo) GetByID(ctx context.Context, id string) (*models.Workspace, error) {
	w, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
	}
	return w, nil
}
func (f *fakeWorkspaceRepo) Update(ctx context.Context, w *models.Workspace) error { return nil }
func (f *fakeWorkspaceRepo) SoftDelete(ctx context.Context, id string) error       { return nil }
func (f *fakeWorkspaceRepo) ListVisibleToUser(ctx context.Context, userID string) ([]models.Workspace, error) {
	return nil, nil
}

type fakeMembershipRepo struct {
	// key "workspaceID/userID" -> stored role
	roles map[string]string
}

func (f *fakeMembershipRepo) Get(ctx context.Context, workspaceID, userID string) (*models.Membership, error) {
	role, ok := f.roles[workspaceID+"/"+userID]
	if !ok {
		return nil, nil
	}
	return &models.Membership{WorkspaceID: workspaceID, UserID: userID, Role: role}, nil
}
func (f *fakeMembershipRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Membership, error) {
	return nil, nil
}
func (f *fakeMembershipRepo) Create(ctx context.Context, m *models.Membership) error { return nil }
func (f *fakeMembershipRepo) UpdateRole(ctx context.Context, workspaceID, userID, role string) error {
	return nil
}
func (f *fakeMembershipRepo) Delete(ctx context.Context, workspaceID, userID string) error {
	return nil
}

type fakeFolderRepo struct {
	byID map[string]*models.Folder
}

func (f *fakeFolderRepo) Create(ctx context.Context, folder *models.Folder) error { return nil }
func (f *fakeFolderRepo) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	folder, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return folder, nil
}
func (f *fakeFolderRepo) Update(ctx context.Context, folder *models.Folder) error { return nil }
func (f *fakeFolderRepo) SoftDeleteMany(ctx context.Context, ids []string) error  { return nil }
func (f *fakeFolderRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Folder, error) {
	var out []models.Folder
	for _, folder := range f.byID {
		if folder.WorkspaceID != nil && *folder.WorkspaceID == workspaceID {
			out = append(out, *folder)
		}
	}
	return out, nil
}
func (f *fakeFolderRepo) ListChildIDs(ctx context.Context, parentIDs []string) ([]string, error) {
	var out []string
	for _, folder := range f.byID {
		if folder.ParentID == nil {
			continue
		}
		for _, p := range parentIDs {
			if *folder.ParentID == p {
				out = append(out, folder.ID)
			}
		}
	}
	return out, nil
}
func (f *fakeFolderRepo) ListChildren(ctx context.Context, workspaceID string, parentID *string) ([]models.Folder, error) {
	var out []models.Folder
	for _, folder := range f.byID {
		if folder.WorkspaceID == nil || *folder.WorkspaceID != workspaceID {
			continue
		}
		switch {
		case parentID == nil && folder.ParentID == nil:
			out = append(out, *folder)
		case parentID != nil && folder.ParentID != nil && *folder.ParentID == *parentID:
			out = append(out, *folder)
		}
	}
	return out, nil
}

type fakeGrantRepo struct {
	// key "folderID/userID" -> stored role
	roles   map[string]string
	folders *fakeFolderRepo
}

func (f *fakeGrantRepo) Get(ctx context.Context, folderID, userID string) (*models.FolderPermission, error) {
	role, ok := f.roles[folderID+"/"+userID]
	if !ok {
		return nil, nil
	}
	return &models.FolderPermission{FolderID: folderID, UserID: userID, Role: role}, nil
}
func (f *fakeGrantRepo) ListByFolder(ctx context.Context, folderID string) ([]models.FolderPermission, error) {
	return nil, nil
}
func (f *fakeGrantRepo) ListByUserInWorkspace(ctx context.Context, workspaceID, userID string) ([]models.FolderPermission, error) {
	var out []models.FolderPermission
	for key, role := range f.roles {
		folderID, grantee, _ := strings.Cut(key, "/")
		if grantee != userID {
			continue
		}
		folder, ok := f.folders.byID[folderID]
		if !ok || folder.WorkspaceID == nil || *folder.WorkspaceID != workspaceID {
			continue
		}
		out = append(out, models.FolderPermission{FolderID: folderID, UserID: userID, Role: role})
	}
	return out, nil
}
func (f *fakeGrantRepo) Upsert(ctx context.Context, perm *models.FolderPermission) error { return nil }
func (f *fakeGrantRepo) Delete(ctx context.Context, folderID, userID string) error      { return nil }

func strPtr(s string) *string { return &s }

// newTestResolver wires the standard fixture:
//
//	workspace "team" owned by owner; admin/editor/viewer members
//	workspace "personal" (personal) owned by owner, with a rogue
//	  membership row for editor
//	folders in team:
//	  docs              public root
//	  secret            private child of docs, EDITOR grant for editor
//	  sub               public child of secret
//	  shared            public root, EDITOR grant for viewer
//	legacy folder (no workspace) created by freelancer, VIEWER grant
//	  for editor
func newTestResolver(t *testing.T) services.Authorizer {
	t.Helper()

	workspaces := &fakeWorkspaceRepo{byID: map[string]*models.Workspace{
		"team":     {ID: "team", OwnerID: "owner", Name: "Team"},
		"personal": {ID: "personal", OwnerID: "owner", Name: "Personal", IsPersonal: true},
	}}
	members := &fakeMembershipRepo{roles: map[string]string{
		"team/admin":      "ADMIN",
		"team/editor":     "EDITOR",
		"team/viewer":     "VIEWER",
		"personal/editor": "ADMIN", // rogue row, must never grant access
	}}
	folders := &fakeFolderRepo{byID: map[string]*models.Folder{
		"docs":   {ID: "docs", WorkspaceID: strPtr("team"), CreatorID: "owner", Name: "Docs"},
		"secret": {ID: "secret", WorkspaceID: strPtr("team"), CreatorID: "owner", ParentID: strPtr("docs"), Name: "Secret", IsPrivate: true},
		"sub":    {ID: "sub", WorkspaceID: strPtr("team"), CreatorID: "owner", ParentID: strPtr("secret"), Name: "Sub"},
		"shared": {ID: "shared", WorkspaceID: strPtr("team"), CreatorID: "owner", Name: "Shared"},
		"legacy": {ID: "legacy", CreatorID: "freelancer", Name: "Legacy"},
	}}
	grants := &fakeGrantRepo{
		roles: map[string]string{
			"secret/editor": "EDITOR",
			"shared/viewer": "EDITOR",
			"legacy/editor": "VIEWER",
		},
		folders: folders,
	}

	roleMatrix, err := matrix.NewRegistry()
	if err != nil {
		t.Fatalf("matrix.NewRegistry: %v", err)
	}

	return NewResolver(workspaces, members, folders, grants, roleMatrix, slog.Default())
}

func TestGetUserRoleInWorkspace(t *testing.T) {
	resolver := newTestResolver(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		userID      string
		workspaceID string
		want        models.Role
	}{
		{name: "owner resolves to OWNER", userID: "owner", workspaceID: "team", want: models.RoleOwner},
		{name: "admin member", userID: "admin", workspaceID: "team", want: models.RoleAdmin},
		{name: "editor member", userID: "editor", workspaceID: "team", want: models.RoleEditor},
		{name: "viewer member", userID: "viewer", workspaceID: "team", want: models.RoleViewer},
		{name: "stranger has no role", userID: "stranger", workspaceID: "team", want: models.RoleNone},
		{name: "personal workspace owner", userID: "owner", workspaceID: "personal", want: models.RoleOwner},
		{name: "rogue membership on personal workspace is ignored", userID: "editor", workspaceID: "personal", want: models.RoleNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.GetUserRoleInWorkspace(ctx, tt.userID, tt.workspaceID)
			if err != nil {
				t.Fatalf("GetUserRoleInWorkspace: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEffectiveFolderRole(t *testing.T) {
	resolver := newTestResolver(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		userID   string
		folderID string
		want     models.Role
	}{
		{name: "owner bypasses privacy", userID: "owner", folderID: "secret", want: models.RoleOwner},
		{name: "admin bypasses privacy", userID: "admin", folderID: "secret", want: models.RoleAdmin},
		{name: "granted editor enters private folder", userID: "editor", folderID: "secret", want: models.RoleEditor},
		{name: "ungranted viewer denied on private folder", userID: "viewer", folderID: "secret", want: models.RoleNone},
		{name: "root folder falls back to workspace role", userID: "viewer", folderID: "docs", want: models.RoleViewer},
		{name: "child inherits parent grant", userID: "editor", folderID: "sub", want: models.RoleEditor},
		{name: "child inherits parent denial", userID: "viewer", folderID: "sub", want: models.RoleNone},
		{name: "grant never widens workspace role", userID: "viewer", folderID: "shared", want: models.RoleViewer},
		{name: "no workspace access means no folder access", userID: "stranger", folderID: "docs", want: models.RoleNone},
		{name: "legacy folder creator owns it", userID: "freelancer", folderID: "legacy", want: models.RoleOwner},
		{name: "legacy folder grant applies", userID: "editor", folderID: "legacy", want: models.RoleViewer},
		{name: "legacy folder denies everyone else", userID: "viewer", folderID: "legacy", want: models.RoleNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.GetEffectiveFolderRole(ctx, tt.userID, tt.folderID)
			if err != nil {
				t.Fatalf("GetEffectiveFolderRole: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanDeleteNotes(t *testing.T) {
	resolver := newTestResolver(t)
	ctx := context.Background()

	tests := []struct {
		userID string
		want   bool
	}{
		{"owner", true},
		{"admin", true},
		{"editor", false}, // editors create and modify but never delete
		{"viewer", false},
		{"stranger", false},
	}

	for _, tt := range tests {
		t.Run(tt.userID, func(t *testing.T) {
			got, err := resolver.CanDeleteNotes(ctx, tt.userID, "team")
			if err != nil {
				t.Fatalf("CanDeleteNotes: %v", err)
			}
			if got != tt.want {
				t.Errorf("CanDeleteNotes(%s) = %v, want %v", tt.userID, got, tt.want)
			}
		})
	}
}

func TestCanManageFolder(t *testing.T) {
	resolver := newTestResolver(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		userID   string
		folderID string
		want     bool
	}{
		{name: "owner manages", userID: "owner", folderID: "secret", want: true},
		{name: "admin manages", userID: "admin", folderID: "secret", want: true},
		{name: "folder grant confers no management", userID: "editor", folderID: "secret", want: false},
		{name: "viewer cannot manage", userID: "viewer", folderID: "docs", want: false},
		{name: "legacy creator manages", userID: "freelancer", folderID: "legacy", want: true},
		{name: "legacy grantee cannot manage", userID: "editor", folderID: "legacy", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.CanManageFolder(ctx, tt.userID, tt.folderID)
			if err != nil {
				t.Fatalf("CanManageFolder: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccessibleFolderIDs(t *testing.T) {
	resolver := newTestResolver(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		userID string
		want   []string
	}{
		{name: "owner sees everything", userID: "owner", want: []string{"docs", "secret", "sub", "shared"}},
		{name: "admin sees everything", userID: "admin", want: []string{"docs", "secret", "sub", "shared"}},
		{name: "editor sees granted private subtree", userID: "editor", want: []string{"docs", "secret", "sub", "shared"}},
		{name: "viewer misses the private subtree", userID: "viewer", want: []string{"docs", "shared"}},
		{name: "stranger sees nothing", userID: "stranger", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.AccessibleFolderIDs(ctx, tt.userID, "team")
			if err != nil {
				t.Fatalf("AccessibleFolderIDs: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for _, id := range tt.want {
				if _, ok := got[id]; !ok {
					t.Errorf("missing folder %q", id)
				}
			}
		})
	}
}

func TestAccessibleFolderIDsCyclicData(t *testing.T) {
	workspaces := &fakeWorkspaceRepo{byID: map[string]*models.Workspace{
		"team": {ID: "team", OwnerID: "owner", Name: "Team"},
	}}
	members := &fakeMembershipRepo{roles: map[string]string{"team/editor": "EDITOR"}}
	folders := &fakeFolderRepo{byID: map[string]*models.Folder{
		"a": {ID: "a", WorkspaceID: strPtr("team"), CreatorID: "owner", ParentID: strPtr("b"), Name: "A"},
		"b": {ID: "b", WorkspaceID: strPtr("team"), CreatorID: "owner", ParentID: strPtr("a"), Name: "B"},
	}}
	grants := &fakeGrantRepo{roles: map[string]string{}, folders: folders}

	roleMatrix, err := matrix.NewRegistry()
	if err != nil {
		t.Fatalf("matrix.NewRegistry: %v", err)
	}
	resolver := NewResolver(workspaces, members, folders, grants, roleMatrix, slog.Default())

	// Must terminate and deny the cyclic chain rather than loop
	got, err := resolver.AccessibleFolderIDs(context.Background(), "editor", "team")
	if err != nil {
		t.Fatalf("AccessibleFolderIDs: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("cyclic folders must resolve to no access, got %v", got)
	}
}

func TestGetEffectiveFolderRoleCyclicChain(t *testing.T) {
	workspaces := &fakeWorkspaceRepo{byID: map[string]*models.Workspace{
		"team": {ID: "team", OwnerID: "owner", Name: "Team"},
	}}
	members := &fakeMembershipRepo{roles: map[string]string{"team/editor": "EDITOR"}}
	folders := &fakeFolderRepo{byID: map[string]*models.Folder{
		"a": {ID: "a", WorkspaceID: strPtr("team"), CreatorID: "owner", ParentID: strPtr("b"), Name: "A"},
		"b": {ID: "b", WorkspaceID: strPtr("team"), CreatorID: "owner", ParentID: strPtr("a"), Name: "B"},
	}}
	grants := &fakeGrantRepo{roles: map[string]string{}, folders: folders}

	roleMatrix, err := matrix.NewRegistry()
	if err != nil {
		t.Fatalf("matrix.NewRegistry: %v", err)
	}
	resolver := NewResolver(workspaces, members, folders, grants, roleMatrix, slog.Default())

	// The depth guard must convert the cycle into an error
	if _, err := resolver.GetEffectiveFolderRole(context.Background(), "editor", "a"); err == nil {
		t.Fatal("expected depth-guard error on cyclic parent chain")
	}
}

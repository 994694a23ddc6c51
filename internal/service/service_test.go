package service

import (
	"context"
	"fmt"

	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
)

// Shared in-memory fakes for the service tests.

type memWorkspaceRepo struct {
	byID map[string]*models.Workspace
}

func (m *memWorkspaceRepo) Create(ctx context.Context, w *models.Workspace) error {
	w.ID = fmt.Sprintf("ws-%d", len(m.byID)+1)
	m.byID[w.ID] = w
	return nil
}
func (m *memWorkspaceRepo) GetByID(ctx context.Context, id string) (*models.Workspace, error) {
	w, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
	}
	return w, nil
}
func (m *memWorkspaceRepo) Update(ctx context.Context, w *models.Workspace) error { return nil }
func (m *memWorkspaceRepo) SoftDelete(ctx context.Context, id string) error {
	delete(m.byID, id)
	return nil
}
func (m *memWorkspaceRepo) ListVisibleToUser(ctx context.Context, userID string) ([]models.Workspace, error) {
	return nil, nil
}

type memMembershipRepo struct {
	created []models.Membership
	deleted []string // "workspaceID/userID"
}

func (m *memMembershipRepo) Get(ctx context.Context, workspaceID, userID string) (*models.Membership, error) {
	return nil, nil
}
func (m *memMembershipRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Membership, error) {
	return nil, nil
}
func (m *memMembershipRepo) Create(ctx context.Context, membership *models.Membership) error {
	m.created = append(m.created, *membership)
	return nil
}
func (m *memMembershipRepo) UpdateRole(ctx context.Context, workspaceID, userID, role string) error {
	return nil
}
func (m *memMembershipRepo) Delete(ctx context.Context, workspaceID, userID string) error {
	m.deleted = append(m.deleted, workspaceID+"/"+userID)
	return nil
}

type memFolderRepo struct {
	byID        map[string]*models.Folder
	softDeleted []string
}

func (m *memFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	folder.ID = fmt.Sprintf("folder-%d", len(m.byID)+1)
	m.byID[folder.ID] = folder
	return nil
}
func (m *memFolderRepo) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	f, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return f, nil
}
func (m *memFolderRepo) Update(ctx context.Context, folder *models.Folder) error {
	m.byID[folder.ID] = folder
	return nil
}
func (m *memFolderRepo) SoftDeleteMany(ctx context.Context, ids []string) error {
	m.softDeleted = append(m.softDeleted, ids...)
	return nil
}
func (m *memFolderRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Folder, error) {
	var out []models.Folder
	for _, f := range m.byID {
		if f.WorkspaceID != nil && *f.WorkspaceID == workspaceID {
			out = append(out, *f)
		}
	}
	return out, nil
}
func (m *memFolderRepo) ListChildIDs(ctx context.Context, parentIDs []string) ([]string, error) {
	var out []string
	for _, f := range m.byID {
		if f.ParentID == nil {
			continue
		}
		for _, p := range parentIDs {
			if *f.ParentID == p {
				out = append(out, f.ID)
			}
		}
	}
	return out, nil
}
func (m *memFolderRepo) ListChildren(ctx context.Context, workspaceID string, parentID *string) ([]models.Folder, error) {
	var out []models.Folder
	for _, f := range m.byID {
		if f.WorkspaceID == nil || *f.WorkspaceID != workspaceID {
			continue
		}
		switch {
		case parentID == nil && f.ParentID == nil:
			out = append(out, *f)
		case parentID != nil && f.ParentID != nil && *f.ParentID == *parentID:
			out = append(out, *f)
		}
	}
	return out, nil
}

type memGrantRepo struct {
	upserted []models.FolderPermission
}

func (m *memGrantRepo) Get(ctx context.Context, folderID, userID string) (*models.FolderPermission, error) {
	return nil, nil
}
func (m *memGrantRepo) ListByFolder(ctx context.Context, folderID string) ([]models.FolderPermission, error) {
	return nil, nil
}
func (m *memGrantRepo) ListByUserInWorkspace(ctx context.Context, workspaceID, userID string) ([]models.FolderPermission, error) {
	return nil, nil
}
func (m *memGrantRepo) Upsert(ctx context.Context, perm *models.FolderPermission) error {
	m.upserted = append(m.upserted, *perm)
	return nil
}
func (m *memGrantRepo) Delete(ctx context.Context, folderID, userID string) error { return nil }

type memNoteRepo struct {
	byID             map[string]*models.Note
	count            int
	deletedByFolders []string
	softDeleted      []string
}

func (m *memNoteRepo) Create(ctx context.Context, note *models.Note) error {
	note.ID = fmt.Sprintf("note-%d", len(m.byID)+1)
	m.byID[note.ID] = note
	return nil
}
func (m *memNoteRepo) GetByID(ctx context.Context, id string) (*models.Note, error) {
	n, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}
	return n, nil
}
func (m *memNoteRepo) Update(ctx context.Context, note *models.Note) error { return nil }
func (m *memNoteRepo) SoftDelete(ctx context.Context, id string) error {
	m.softDeleted = append(m.softDeleted, id)
	return nil
}
func (m *memNoteRepo) SoftDeleteByFolderIDs(ctx context.Context, folderIDs []string) error {
	m.deletedByFolders = append(m.deletedByFolders, folderIDs...)
	return nil
}
func (m *memNoteRepo) ListByWorkspace(ctx context.Context, workspaceID string, folderIDs []string) ([]models.Note, error) {
	return nil, nil
}
func (m *memNoteRepo) CountByWorkspace(ctx context.Context, workspaceID string) (int, error) {
	return m.count, nil
}

type memCommentRepo struct {
	byID        map[string]*models.Comment
	softDeleted []string
	resolved    map[string]bool
	updated     map[string]string
}

func (m *memCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	comment.ID = fmt.Sprintf("comment-%d", len(m.byID)+1)
	m.byID[comment.ID] = comment
	return nil
}
func (m *memCommentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}
	return c, nil
}
func (m *memCommentRepo) UpdateContent(ctx context.Context, id, content string) error {
	if m.updated == nil {
		m.updated = make(map[string]string)
	}
	m.updated[id] = content
	return nil
}
func (m *memCommentRepo) SetResolved(ctx context.Context, id string, resolved bool) error {
	if m.resolved == nil {
		m.resolved = make(map[string]bool)
	}
	m.resolved[id] = resolved
	return nil
}
func (m *memCommentRepo) ListByNote(ctx context.Context, noteID string) ([]models.Comment, error) {
	return nil, nil
}
func (m *memCommentRepo) ListChildIDs(ctx context.Context, parentIDs []string) ([]string, error) {
	var out []string
	for _, c := range m.byID {
		if c.ParentID == nil {
			continue
		}
		for _, p := range parentIDs {
			if *c.ParentID == p {
				out = append(out, c.ID)
			}
		}
	}
	return out, nil
}
func (m *memCommentRepo) SoftDeleteMany(ctx context.Context, ids []string) error {
	m.softDeleted = append(m.softDeleted, ids...)
	return nil
}

// passthroughTx runs the function without a real transaction
type passthroughTx struct{}

func (passthroughTx) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

// stubAuthorizer answers every gate from fixed fields
type stubAuthorizer struct {
	role            models.Role
	accessWorkspace bool
	manageWorkspace bool
	editNotes       bool
	deleteNotes     bool
	folderRole      models.Role
	accessFolder    bool
	editFolder      bool
	manageFolder    bool
	accessible      map[string]struct{}
}

func (s *stubAuthorizer) GetUserRoleInWorkspace(ctx context.Context, userID, workspaceID string) (models.Role, error) {
	return s.role, nil
}
func (s *stubAuthorizer) CanAccessWorkspace(ctx context.Context, userID, workspaceID string) (bool, error) {
	return s.accessWorkspace, nil
}
func (s *stubAuthorizer) CanManageWorkspace(ctx context.Context, userID, workspaceID string) (bool, error) {
	return s.manageWorkspace, nil
}
func (s *stubAuthorizer) CanEditNotes(ctx context.Context, userID, workspaceID string) (bool, error) {
	return s.editNotes, nil
}
func (s *stubAuthorizer) CanDeleteNotes(ctx context.Context, userID, workspaceID string) (bool, error) {
	return s.deleteNotes, nil
}
func (s *stubAuthorizer) GetEffectiveFolderRole(ctx context.Context, userID, folderID string) (models.Role, error) {
	return s.folderRole, nil
}
func (s *stubAuthorizer) CanAccessFolder(ctx context.Context, userID, folderID string) (bool, error) {
	return s.accessFolder, nil
}
func (s *stubAuthorizer) CanEditFolder(ctx context.Context, userID, folderID string) (bool, error) {
	return s.editFolder, nil
}
func (s *stubAuthorizer) CanManageFolder(ctx context.Context, userID, folderID string) (bool, error) {
	return s.manageFolder, nil
}
func (s *stubAuthorizer) AccessibleFolderIDs(ctx context.Context, userID, workspaceID string) (map[string]struct{}, error) {
	return s.accessible, nil
}

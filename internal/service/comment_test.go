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
)

func newCommentFixture(auth *stubAuthorizer, note *models.Note, comments ...*models.Comment) (services.CommentService, *memCommentRepo) {
	commentRepo := &memCommentRepo{byID: map[string]*models.Comment{}}
	for _, c := range comments {
		commentRepo.byID[c.ID] = c
	}
	noteRepo := &memNoteRepo{byID: map[string]*models.Note{}}
	if note != nil {
		noteRepo.byID[note.ID] = note
	}
	svc := NewCommentService(commentRepo, noteRepo, passthroughTx{}, auth, slog.Default())
	return svc, commentRepo
}

func TestUpdateCommentAuthorOnly(t *testing.T) {
	note := &models.Note{ID: "n", WorkspaceID: wsPtr("ws"), CreatorID: "owner"}
	comment := &models.Comment{ID: "c", NoteID: "n", AuthorID: "alice", Content: "first"}
	svc, commentRepo := newCommentFixture(&stubAuthorizer{}, note, comment)

	// Even a workspace admin cannot edit someone else's words
	_, err := svc.UpdateComment(context.Background(), "admin", "c", &services.UpdateCommentRequest{Content: "rewritten"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for non-author edit, got %v", err)
	}

	if _, err := svc.UpdateComment(context.Background(), "alice", "c", &services.UpdateCommentRequest{Content: "edited"}); err != nil {
		t.Fatalf("author edit: %v", err)
	}
	if commentRepo.updated["c"] != "edited" {
		t.Errorf("stored content = %q, want %q", commentRepo.updated["c"], "edited")
	}
}

func TestSetResolvedRequiresNoteEditRights(t *testing.T) {
	note := &models.Note{ID: "n", WorkspaceID: wsPtr("ws"), CreatorID: "owner"}
	comment := &models.Comment{ID: "c", NoteID: "n", AuthorID: "alice"}

	// Viewer: can read but not edit the note, so resolving is off limits,
	// even for the comment's own author
	svc, _ := newCommentFixture(&stubAuthorizer{accessWorkspace: true, editNotes: false}, note, comment)
	_, err := svc.SetResolved(context.Background(), "alice", "c", true)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for viewer resolve, got %v", err)
	}

	// Editor resolves fine
	svc, commentRepo := newCommentFixture(&stubAuthorizer{accessWorkspace: true, editNotes: true}, note, comment)
	got, err := svc.SetResolved(context.Background(), "bob", "c", true)
	if err != nil {
		t.Fatalf("SetResolved: %v", err)
	}
	if !got.Resolved || !commentRepo.resolved["c"] {
		t.Error("comment should be resolved")
	}
}

func TestDeleteCommentCascadesReplies(t *testing.T) {
	note := &models.Note{ID: "n", WorkspaceID: wsPtr("ws"), CreatorID: "owner"}
	root := &models.Comment{ID: "c1", NoteID: "n", AuthorID: "alice"}
	reply := &models.Comment{ID: "c2", NoteID: "n", AuthorID: "bob", ParentID: wsPtr("c1")}
	nested := &models.Comment{ID: "c3", NoteID: "n", AuthorID: "alice", ParentID: wsPtr("c2")}
	unrelated := &models.Comment{ID: "c4", NoteID: "n", AuthorID: "bob"}
	svc, commentRepo := newCommentFixture(&stubAuthorizer{}, note, root, reply, nested, unrelated)

	if err := svc.DeleteComment(context.Background(), "alice", "c1"); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}

	got := append([]string(nil), commentRepo.softDeleted...)
	sort.Strings(got)
	want := []string{"c1", "c2", "c3"}
	if len(got) != len(want) {
		t.Fatalf("soft-deleted = %v, want %v", got, want)
	}
	for i, id := range want {
		if got[i] != id {
			t.Fatalf("soft-deleted = %v, want %v", got, want)
		}
	}
}

func TestDeleteCommentByWorkspaceManager(t *testing.T) {
	note := &models.Note{ID: "n", WorkspaceID: wsPtr("ws"), CreatorID: "owner"}
	comment := &models.Comment{ID: "c", NoteID: "n", AuthorID: "alice"}
	svc, commentRepo := newCommentFixture(&stubAuthorizer{manageWorkspace: true}, note, comment)

	if err := svc.DeleteComment(context.Background(), "admin", "c"); err != nil {
		t.Fatalf("manager delete: %v", err)
	}
	if len(commentRepo.softDeleted) != 1 || commentRepo.softDeleted[0] != "c" {
		t.Errorf("soft-deleted = %v", commentRepo.softDeleted)
	}
}

func TestDeleteCommentDeniedForBystander(t *testing.T) {
	note := &models.Note{ID: "n", WorkspaceID: wsPtr("ws"), CreatorID: "owner"}
	comment := &models.Comment{ID: "c", NoteID: "n", AuthorID: "alice"}
	svc, _ := newCommentFixture(&stubAuthorizer{manageWorkspace: false}, note, comment)

	err := svc.DeleteComment(context.Background(), "bob", "c")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreateCommentReplyMustShareNote(t *testing.T) {
	note := &models.Note{ID: "n", WorkspaceID: wsPtr("ws"), CreatorID: "owner"}
	other := &models.Comment{ID: "c-other", NoteID: "n2", AuthorID: "alice"}
	svc, _ := newCommentFixture(&stubAuthorizer{accessWorkspace: true}, note, other)

	parent := "c-other"
	_, err := svc.CreateComment(context.Background(), "bob", &services.CreateCommentRequest{
		NoteID:   "n",
		ParentID: &parent,
		Content:  "reply",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for cross-note reply, got %v", err)
	}
}

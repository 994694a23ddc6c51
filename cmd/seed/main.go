package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"quill/internal/authz"
	"quill/internal/authz/matrix"
	"quill/internal/config"
	"quill/internal/domain/services"
	"quill/internal/repository/postgres"
	"quill/internal/service"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed data")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("🚫 BLOCKED: Cannot run --drop-tables in production environment")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("📋 Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	if err := seedData(ctx, pool, tables, logger); err != nil {
		log.Fatalf("Failed to seed data: %v", err)
	}
	log.Println("✅ Seed data created")
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	// Enable UUID extension
	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\""); err != nil {
		return err
	}

	createWorkspaces := `
		CREATE TABLE IF NOT EXISTS ` + tables.Workspaces + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			owner_id UUID NOT NULL,
			name TEXT NOT NULL,
			is_personal BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)
	`
	if _, err := pool.Exec(ctx, createWorkspaces); err != nil {
		return err
	}

	createMembers := `
		CREATE TABLE IF NOT EXISTS ` + tables.WorkspaceMembers + ` (
			workspace_id UUID NOT NULL REFERENCES ` + tables.Workspaces + `(id) ON DELETE CASCADE,
			user_id UUID NOT NULL,
			role TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (workspace_id, user_id)
		)
	`
	if _, err := pool.Exec(ctx, createMembers); err != nil {
		return err
	}

	createFolders := `
		CREATE TABLE IF NOT EXISTS ` + tables.Folders + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			workspace_id UUID REFERENCES ` + tables.Workspaces + `(id) ON DELETE CASCADE,
			creator_id UUID NOT NULL,
			parent_id UUID REFERENCES ` + tables.Folders + `(id),
			name TEXT NOT NULL,
			is_private BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)
	`
	if _, err := pool.Exec(ctx, createFolders); err != nil {
		return err
	}

	createPermissions := `
		CREATE TABLE IF NOT EXISTS ` + tables.FolderPermissions + ` (
			folder_id UUID NOT NULL REFERENCES ` + tables.Folders + `(id) ON DELETE CASCADE,
			user_id UUID NOT NULL,
			role TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (folder_id, user_id)
		)
	`
	if _, err := pool.Exec(ctx, createPermissions); err != nil {
		return err
	}

	createNotes := `
		CREATE TABLE IF NOT EXISTS ` + tables.Notes + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			workspace_id UUID REFERENCES ` + tables.Workspaces + `(id) ON DELETE CASCADE,
			folder_id UUID REFERENCES ` + tables.Folders + `(id),
			creator_id UUID NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)
	`
	if _, err := pool.Exec(ctx, createNotes); err != nil {
		return err
	}

	createComments := `
		CREATE TABLE IF NOT EXISTS ` + tables.Comments + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			note_id UUID NOT NULL REFERENCES ` + tables.Notes + `(id) ON DELETE CASCADE,
			author_id UUID NOT NULL,
			parent_id UUID REFERENCES ` + tables.Comments + `(id),
			content TEXT NOT NULL,
			resolved BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)
	`
	if _, err := pool.Exec(ctx, createComments); err != nil {
		return err
	}

	// Create indexes
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `folders_workspace_parent ON ` + tables.Folders + `(workspace_id, parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `notes_workspace_folder ON ` + tables.Notes + `(workspace_id, folder_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `comments_note ON ` + tables.Comments + `(note_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `comments_parent ON ` + tables.Comments + `(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `members_user ON ` + tables.WorkspaceMembers + `(user_id)`,
	}

	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.Comments,
		tables.Notes,
		tables.FolderPermissions,
		tables.Folders,
		tables.WorkspaceMembers,
		tables.Workspaces,
	}

	for _, table := range tableNames {
		dropSQL := "DROP TABLE IF EXISTS " + table + " CASCADE"
		if _, err := pool.Exec(ctx, dropSQL); err != nil {
			return err
		}
		log.Printf("  ✓ Dropped %s", table)
	}

	return nil
}

// seedData creates a demo team with a workspace, folders, notes and a
// comment thread. Runs through the services so all invariants hold.
func seedData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, logger *slog.Logger) error {
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	workspaceRepo := postgres.NewWorkspaceRepository(repoConfig)
	membershipRepo := postgres.NewMembershipRepository(repoConfig)
	folderRepo := postgres.NewFolderRepository(repoConfig)
	grantRepo := postgres.NewFolderPermissionRepository(repoConfig)
	noteRepo := postgres.NewNoteRepository(repoConfig)
	commentRepo := postgres.NewCommentRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	roleMatrix, err := matrix.NewRegistry()
	if err != nil {
		return err
	}
	authorizer := authz.NewResolver(workspaceRepo, membershipRepo, folderRepo, grantRepo, roleMatrix, logger)

	workspaceService := service.NewWorkspaceService(workspaceRepo, membershipRepo, noteRepo, authorizer, logger)
	folderService := service.NewFolderService(folderRepo, grantRepo, noteRepo, txManager, authorizer, logger)
	noteService := service.NewNoteService(noteRepo, folderRepo, authorizer, logger)
	commentService := service.NewCommentService(commentRepo, noteRepo, txManager, authorizer, logger)

	const (
		ownerID  = "11111111-1111-1111-1111-111111111111"
		editorID = "22222222-2222-2222-2222-222222222222"
		viewerID = "33333333-3333-3333-3333-333333333333"
	)

	// Personal workspace for the owner
	if _, err := workspaceService.CreateWorkspace(ctx, ownerID, &services.CreateWorkspaceRequest{
		Name:       "My Notes",
		IsPersonal: true,
	}); err != nil {
		return err
	}

	// Shared team workspace
	team, err := workspaceService.CreateWorkspace(ctx, ownerID, &services.CreateWorkspaceRequest{
		Name: "Product Team",
	})
	if err != nil {
		return err
	}

	if _, err := workspaceService.AddMember(ctx, ownerID, team.ID, &services.AddMemberRequest{
		UserID: editorID,
		Role:   "EDITOR",
	}); err != nil {
		return err
	}
	if _, err := workspaceService.AddMember(ctx, ownerID, team.ID, &services.AddMemberRequest{
		UserID: viewerID,
		Role:   "VIEWER",
	}); err != nil {
		return err
	}

	// Folder tree: Specs/ with a private Drafts/ child
	specs, err := folderService.CreateFolder(ctx, ownerID, &services.CreateFolderRequest{
		WorkspaceID: team.ID,
		Name:        "Specs",
	})
	if err != nil {
		return err
	}
	drafts, err := folderService.CreateFolder(ctx, ownerID, &services.CreateFolderRequest{
		WorkspaceID: team.ID,
		ParentID:    &specs.ID,
		Name:        "Drafts",
		IsPrivate:   true,
	})
	if err != nil {
		return err
	}

	// Let the editor into the private drafts folder
	if _, err := folderService.SetPermission(ctx, ownerID, drafts.ID, &services.SetFolderPermissionRequest{
		UserID: editorID,
		Role:   "EDITOR",
	}); err != nil {
		return err
	}

	// Notes
	note, err := noteService.CreateNote(ctx, ownerID, &services.CreateNoteRequest{
		WorkspaceID: &team.ID,
		FolderID:    &specs.ID,
		Title:       "Q4 Roadmap",
		Content:     "Draft roadmap for the fourth quarter.",
	})
	if err != nil {
		return err
	}
	if _, err := noteService.CreateNote(ctx, editorID, &services.CreateNoteRequest{
		WorkspaceID: &team.ID,
		FolderID:    &drafts.ID,
		Title:       "Pricing Ideas",
		Content:     "Early thoughts, not ready to share.",
	}); err != nil {
		return err
	}

	// Comment thread on the roadmap note
	root, err := commentService.CreateComment(ctx, viewerID, &services.CreateCommentRequest{
		NoteID:  note.ID,
		Content: "Should the migration land in Q4 or slip to Q1?",
	})
	if err != nil {
		return err
	}
	if _, err := commentService.CreateComment(ctx, ownerID, &services.CreateCommentRequest{
		NoteID:   note.ID,
		ParentID: &root.ID,
		Content:  "Q4. I'll update the timeline section.",
	}); err != nil {
		return err
	}

	log.Printf("  ✓ Seeded workspace %s with folders, notes and comments", team.ID)

	return nil
}

package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"quill/internal/auth"
	"quill/internal/authz"
	"quill/internal/authz/matrix"
	"quill/internal/config"
	"quill/internal/handler"
	"quill/internal/middleware"
	"quill/internal/repository/postgres"
	"quill/internal/service"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
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

	// Initialize the role matrix
	roleMatrix, err := matrix.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize role matrix: %v", err)
	}
	logger.Info("role matrix initialized")

	// Permission resolver
	authorizer := authz.NewResolver(workspaceRepo, membershipRepo, folderRepo, grantRepo, roleMatrix, logger)

	// Create services
	workspaceService := service.NewWorkspaceService(workspaceRepo, membershipRepo, noteRepo, authorizer, logger)
	folderService := service.NewFolderService(folderRepo, grantRepo, noteRepo, txManager, authorizer, logger)
	noteService := service.NewNoteService(noteRepo, folderRepo, authorizer, logger)
	commentService := service.NewCommentService(commentRepo, noteRepo, txManager, authorizer, logger)
	graphService := service.NewGraphService(folderRepo, noteRepo, authorizer, logger)

	// Create handlers
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService, logger)
	folderHandler := handler.NewFolderHandler(folderService, logger)
	noteHandler := handler.NewNoteHandler(noteService, logger)
	commentHandler := handler.NewCommentHandler(commentService, logger)
	graphHandler := handler.NewGraphHandler(graphService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", noteHandler.HealthCheck)

	// Workspace routes
	mux.HandleFunc("GET /api/workspaces", workspaceHandler.ListWorkspaces)
	mux.HandleFunc("POST /api/workspaces", workspaceHandler.CreateWorkspace)
	mux.HandleFunc("GET /api/workspaces/{id}", workspaceHandler.GetWorkspace)
	mux.HandleFunc("PATCH /api/workspaces/{id}", workspaceHandler.UpdateWorkspace)
	mux.HandleFunc("DELETE /api/workspaces/{id}", workspaceHandler.DeleteWorkspace)

	// Membership routes
	mux.HandleFunc("GET /api/workspaces/{id}/members", workspaceHandler.ListMembers)
	mux.HandleFunc("POST /api/workspaces/{id}/members", workspaceHandler.AddMember)
	mux.HandleFunc("PATCH /api/workspaces/{id}/members/{userId}", workspaceHandler.UpdateMemberRole)
	mux.HandleFunc("DELETE /api/workspaces/{id}/members/{userId}", workspaceHandler.RemoveMember)

	// Folder routes
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)
	mux.HandleFunc("GET /api/workspaces/{id}/folders", folderHandler.ListFolders)

	// Folder privacy and grants
	mux.HandleFunc("PUT /api/folders/{id}/privacy", folderHandler.SetPrivacy)
	mux.HandleFunc("GET /api/folders/{id}/permissions", folderHandler.ListPermissions)
	mux.HandleFunc("PUT /api/folders/{id}/permissions", folderHandler.SetPermission)
	mux.HandleFunc("DELETE /api/folders/{id}/permissions/{userId}", folderHandler.RemovePermission)

	// Note routes
	mux.HandleFunc("POST /api/notes", noteHandler.CreateNote)
	mux.HandleFunc("GET /api/notes/{id}", noteHandler.GetNote)
	mux.HandleFunc("PATCH /api/notes/{id}", noteHandler.UpdateNote)
	mux.HandleFunc("DELETE /api/notes/{id}", noteHandler.DeleteNote)
	mux.HandleFunc("GET /api/workspaces/{id}/notes", noteHandler.ListNotes)

	// Comment routes
	mux.HandleFunc("POST /api/notes/{id}/comments", commentHandler.CreateComment)
	mux.HandleFunc("GET /api/notes/{id}/comments", commentHandler.ListComments)
	mux.HandleFunc("PATCH /api/comments/{id}", commentHandler.UpdateComment)
	mux.HandleFunc("PUT /api/comments/{id}/resolved", commentHandler.SetResolved)
	mux.HandleFunc("DELETE /api/comments/{id}", commentHandler.DeleteComment)

	// Graph route
	mux.HandleFunc("GET /api/workspaces/{id}/graph", graphHandler.GetGraph)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	h = middleware.AuthMiddleware(jwtVerifier)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-shutdown
	logger.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

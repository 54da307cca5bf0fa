package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/trackdesk-inc/trackdesk-engine/pkg/auth"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/config"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/crypto"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/database"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/handlers"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/logging"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/middleware"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/repositories"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("bind_addr", cfg.BindAddr),
		zap.String("port", cfg.Port),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	if err := runMigrations(cfg, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.String("error", logging.SanitizeError(err)))
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	issueRepo := repositories.NewIssueRepository(db)
	commentRepo := repositories.NewCommentRepository(db)

	// Services
	tokens := auth.NewTokenService(cfg.Auth.TokenSecret, "trackdesk-engine",
		cfg.Auth.AccessTTL(), cfg.Auth.RefreshTTL())
	hasher := crypto.NewPasswordHasher()
	access := services.NewAccessEngine(projectRepo, issueRepo)
	userService := services.NewUserService(userRepo, access, hasher, tokens, logger)
	projectService := services.NewProjectService(projectRepo, issueRepo, access, logger)
	issueService := services.NewIssueService(issueRepo, commentRepo, projectRepo, access, logger)
	commentService := services.NewCommentService(commentRepo, access, logger)

	// HTTP surface
	authMiddleware := auth.NewMiddleware(tokens, logger)
	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAuthHandler(userService, tokens, logger).RegisterRoutes(mux)
	handlers.NewUsersHandler(userService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewProjectsHandler(projectService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewIssuesHandler(issueService, commentService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewCommentsHandler(commentService, logger).RegisterRoutes(mux, authMiddleware)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting trackdesk-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
	}
}

// newLogger builds a production logger, or a human-readable development one
// for local runs.
func newLogger(env string) (*zap.Logger, error) {
	if env == "local" || env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// runMigrations applies pending schema migrations. golang-migrate needs a
// database/sql handle rather than the pgx pool.
func runMigrations(cfg *config.Config, logger *zap.Logger) error {
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return database.RunMigrations(sqlDB, cfg.MigrationsPath, logger)
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/converselab/converse-api/internal/config"
	"github.com/converselab/converse-api/internal/generation"
	"github.com/converselab/converse-api/internal/platform/gemini"
	"github.com/converselab/converse-api/internal/platform/logger"
	"github.com/converselab/converse-api/internal/platform/ollama"
	"github.com/converselab/converse-api/internal/platform/postgres"
	"github.com/converselab/converse-api/internal/service"
	"github.com/converselab/converse-api/internal/service/auth"
	"github.com/converselab/converse-api/internal/store"
	"github.com/converselab/converse-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore         store.UserStore
	conversationStore store.ConversationStore
	messageStore      store.MessageStore
	taskStore         store.TaskStore
	feedbackStore     store.FeedbackStore
	attachmentStore   store.AttachmentStore
	statsStore        store.StatsStore

	// Model backend
	generator     generation.Generator
	healthChecker generation.HealthChecker

	// Background execution
	taskRunner  *task.Runner
	taskFactory *task.ChatTaskFactory

	// Services
	jwtService          auth.JWTService
	userService         service.UserService
	conversationService service.ConversationService
	messageService      service.MessageService
	feedbackService     service.FeedbackService
	attachmentService   service.AttachmentService
	adminService        service.AdminService
}

// initializeApp loads configuration and wires every application component.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(cfg.Server.LogLevel)
	log.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"llm_provider", cfg.LLM.Provider)

	db, err := setupDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	if err := applyMigrations(db, log); err != nil {
		return nil, err
	}

	app := &application{
		config: cfg,
		logger: log,
		db:     db,
	}

	app.userStore = postgres.NewUserStore(db, log)
	app.conversationStore = postgres.NewConversationStore(db, log)
	app.messageStore = postgres.NewMessageStore(db, log)
	app.taskStore = postgres.NewTaskStore(db, log)
	app.feedbackStore = postgres.NewFeedbackStore(db, log)
	app.attachmentStore = postgres.NewAttachmentStore(db, log)
	app.statsStore = postgres.NewStatsStore(db, log)

	if err := app.setupGenerator(); err != nil {
		return nil, err
	}

	app.taskRunner = task.NewRunner(task.RunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
	}, log)
	app.taskFactory = task.NewChatTaskFactory(
		db,
		app.taskStore,
		app.conversationStore,
		app.messageStore,
		app.generator,
		log,
	)

	if err := app.setupServices(); err != nil {
		return nil, err
	}

	return app, nil
}

// setupGenerator selects the model backend by the configured provider.
func (app *application) setupGenerator() error {
	switch app.config.LLM.Provider {
	case "gemini":
		generator, err := gemini.NewGenerator(context.Background(), app.config.LLM, app.logger)
		if err != nil {
			return fmt.Errorf("failed to create Gemini generator: %w", err)
		}
		app.generator = generator
		app.healthChecker = generator
	default:
		client, err := ollama.NewClient(app.config.LLM, app.logger)
		if err != nil {
			return fmt.Errorf("failed to create Ollama client: %w", err)
		}
		app.generator = client
		app.healthChecker = client
	}
	return nil
}

// setupServices wires the service layer on top of the stores.
func (app *application) setupServices() error {
	jwtService, err := auth.NewJWTService(app.config.Auth)
	if err != nil {
		return fmt.Errorf("failed to create JWT service: %w", err)
	}
	app.jwtService = jwtService

	hasher := auth.NewBcryptHasher()
	app.userService = service.NewUserService(app.userStore, jwtService, hasher, app.db, app.logger)
	app.conversationService = service.NewConversationService(
		app.conversationStore,
		app.messageStore,
		app.db,
		app.logger,
	)
	app.messageService = service.NewMessageService(
		app.taskStore,
		app.conversationStore,
		app.taskFactory,
		app.taskRunner,
		app.db,
		app.logger,
	)
	app.feedbackService = service.NewFeedbackService(app.feedbackStore, app.db, app.logger)

	attachmentService, err := service.NewAttachmentService(
		app.attachmentStore,
		app.config.Upload,
		app.db,
		app.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create attachment service: %w", err)
	}
	app.attachmentService = attachmentService

	app.adminService = service.NewAdminService(app.attachmentStore, app.statsStore, app.logger)
	return nil
}

// run starts the task runner and HTTP server, then blocks until a shutdown
// signal arrives. Both are stopped gracefully before returning.
func (app *application) run() error {
	app.taskRunner.Start()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Server.Port),
		Handler: app.setupRouter(),
	}

	serverErrCh := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdownCh:
		app.logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErrCh:
		app.logger.Error("server failed", "error", err)
		app.cleanup()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", "error", err)
		app.cleanup()
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.cleanup()
	app.logger.Info("server shutdown completed")
	return nil
}

// cleanup stops the task runner and closes the database pool. Running tasks
// finish their current work; queued tasks stay pending.
func (app *application) cleanup() {
	app.taskRunner.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database connection", "error", err)
	}
}

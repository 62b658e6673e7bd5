package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"keepnotes/internal/config"
	"keepnotes/internal/http"
	"keepnotes/internal/service"
	"keepnotes/internal/storage"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API stores notes and labels: notes carry a title, a markdown body,
// labels and images, and move between the active, pinned, archived and trash views.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: keepnotes API
//   version: 1.0.0
// basePath: /api/v1
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	if err := cfg.EnsureDataDir(); err != nil {
		log.Fatalf("Failed to prepare database directory: %v", err)
	}
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Create repository instances
	noteRepo := storage.NewNoteRepo(db)
	labelRepo := storage.NewLabelRepo(db)

	opts := []service.Option{
		service.WithCascadePolicy(cfg.CascadePolicy),
		service.WithWriteRetries(cfg.WriteRetries),
		service.WithLogger(logger),
	}
	noteService := service.NewNoteService(noteRepo, labelRepo, opts...)
	labelService := service.NewLabelService(labelRepo, noteRepo, opts...)
	slog.Info("Services initialized", "cascade_policy", cfg.CascadePolicy, "write_retries", cfg.WriteRetries)

	router := http.NewRouter(&http.Deps{
		NoteService:    noteService,
		LabelService:   labelService,
		DB:             db,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	server := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Starting API server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatalf("API server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}

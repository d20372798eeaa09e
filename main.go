package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jotion/config"
	"jotion/config/database"
	"jotion/internal/document/repository"
	"jotion/middleware"
	"jotion/pkg/logger"
	"jotion/router"
	"jotion/socket"
	"jotion/store"
)

func main() {
	cfg, fromFile := config.Load()

	logger.Init(cfg.Log.Level, cfg.Log.File)
	defer logger.Sync()

	if !fromFile {
		logger.Sugar.Info("No .env file found, using environment variables from OS")
	}
	if cfg.Auth.JWTSecret == "" {
		logger.Sugar.Warn("JWT_SECRET is not set; every authenticated request will be rejected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, cfg.Database)
	if err != nil {
		logger.Sugar.Fatalf("Failed to open document store: %v", err)
	}
	defer closeRepo()

	hub := socket.NewHub()
	go hub.Run(ctx)

	auth := middleware.NewAuthenticator(cfg.Auth.JWTSecret)
	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router.Setup(repo, hub, auth, cfg.App.CorsAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Sugar.Infof("Backend listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Sugar.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar.Errorf("Graceful shutdown failed: %v", err)
	}
}

func openRepository(ctx context.Context, cfg config.DatabaseConfig) (repository.Repository, func(), error) {
	if cfg.Driver == config.StoreDriverMemory {
		logger.Sugar.Warn("Using in-memory document store; data is lost on restart")
		return repository.NewMemoryRepository(), func() {}, nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return repository.NewDocumentRepository(db), func() { db.Close() }, nil
}

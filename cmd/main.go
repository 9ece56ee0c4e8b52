/*
Package main is the entry point for the RoboVeda API server.

It loads configuration, initializes the global logging system, wires the
user store (PostgreSQL, or in-memory limited mode when no database is
configured), the AI engine, avatar storage, and the device registry, then
serves HTTP and gracefully handles interrupt signals (SIGINT, SIGTERM).
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"roboveda/internal/app/ai"
	"roboveda/internal/app/db"
	"roboveda/internal/app/devices"
	"roboveda/internal/app/storage"
	"roboveda/internal/app/users"
	"roboveda/internal/configs"
	"roboveda/internal/handler"
	"roboveda/internal/pkg/logx"
)

func main() {
	// A missing .env is fine; real deployments set variables directly.
	_ = godotenv.Load()

	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := &handler.AppDeps{
		Config:  cfg,
		Devices: devices.NewRegistry(),
	}

	if cfg.DatabaseDSN != "" {
		pool, err := db.NewPool(cfg.DatabaseDSN)
		if err != nil {
			logx.Fatal(err, "Failed to connect to database")
		}
		defer pool.Close()
		deps.Users = users.NewPostgresStore(pool)
		logx.Info("Database connected; migrations applied.")
	} else {
		deps.Users = users.NewMemoryStore()
		deps.LimitedMode = true
		logx.Warn("DATABASE_URL not set. Running in limited mode: accounts are in-memory only.")
	}

	if cfg.AIAPIKey != "" {
		deps.AI = ai.NewOpenAIEngine(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
	} else {
		deps.AI = &ai.LocalEngine{ChunkDelay: 40 * time.Millisecond}
		logx.Warn("AI_API_KEY not set. Chat responses use the local canned responder.")
	}

	if cfg.HasS3() {
		avatars, err := storage.NewAvatarStorage(storage.ServiceConfig{
			S3BucketName:      cfg.S3BucketName,
			S3Endpoint:        cfg.S3Endpoint,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			logx.Fatal(err, "Failed to initialize avatar storage")
		}
		deps.Avatars = avatars
	} else {
		logx.Warn("S3 storage not configured. Avatar uploads are disabled.")
	}

	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router,
		ReadTimeout: 5 * time.Second,
		// No write timeout: chat completions and telemetry feeds hold the
		// response open for as long as the client stays connected.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("RoboVeda API starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}

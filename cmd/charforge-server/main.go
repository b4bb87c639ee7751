// Package main runs the character builder API: build submission, trackers, dice rolls and
// the moderator roll feed, with JWT authentication and optional SQLite persistence.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"charforge/cmd/charforge-server/cli"
	"charforge/internal/server/config"
	"charforge/internal/server/http"
	"charforge/internal/server/processor"
	"charforge/internal/server/service"
	"charforge/internal/server/storage"
)

const (
	gracefulShutdownTimeout = time.Second * 5
)

func main() {
	// Database administration mini-app
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		os.Exit(0)
	}

	cfg, err := config.Load(os.Args[0], os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.PIDPath != "" {
		cleanup, err := managePIDFile(cfg.PIDPath, cfg.PIDLock)
		if err != nil {
			log.Fatalf("Failed to manage PID file: %v", err)
		}
		defer cleanup()
		log.Printf("PID file created at: %s (lock: %v)", cfg.PIDPath, cfg.PIDLock)
	}

	// 1. Storage (optional)
	var store *storage.Store
	if cfg.StoragePath != "" {
		log.Printf("Initializing persistent storage at: %s", cfg.StoragePath)
		store, err = storage.NewStore(cfg.StoragePath, cfg.Dev)
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
		if err := store.InitDB(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
	} else {
		log.Printf("Persistent storage disabled (use -storage-path to enable)")
	}

	jwtSecret, err := cfg.Secret()
	if err != nil {
		log.Fatalf("Failed to prepare JWT secret: %v", err)
	}
	switch {
	case cfg.JWTSecret != "":
		log.Printf("Using configured JWT secret")
	case cfg.Dev:
		log.Printf("Using fixed JWT secret (dev mode)")
	default:
		log.Printf("JWT secret generated (sessions valid until restart)")
	}

	// 2. Service owns the store from here on and closes it on shutdown
	svc := service.New(store, jwtSecret, cfg.PollInterval)

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go svc.RunCleanupJob(cleanupCtx, service.CleanupJobInterval)

	// 3. Processor
	proc, err := processor.New(svc)
	if err != nil {
		cleanupCancel()
		svc.Shutdown(gracefulShutdownTimeout)
		log.Fatalf("Failed to initialize processor: %v", err)
	}

	// 4. HTTP
	app := http.NewFiberApp(proc, svc, cfg.Dev)
	apiAddr := cfg.Addr()

	go func() {
		log.Printf("Charforge API Server starting...")
		log.Printf("API Listening on: http://%s", apiAddr)
		if cfg.Dev {
			log.Printf("Rate Limit: 20 requests/second per IP (DEV MODE)")
		} else {
			log.Printf("Rate Limit: 10 requests/second per IP")
		}
		if cfg.StoragePath != "" {
			log.Printf("Storage: Enabled (%s)", cfg.StoragePath)
		} else {
			log.Printf("Storage: Disabled (builds, trackers and rolls unavailable)")
		}
		log.Printf("Roll long-poll timeout: %s", cfg.PollInterval)
		log.Printf("Character Endpoints: http://%s/api/v1/characters", apiAddr)
		log.Printf("Auth Endpoints: http://%s/api/v1/auth/[register|login|me|logout]", apiAddr)
		log.Printf("Health: http://%s/health", apiAddr)

		if err := app.Listen(apiAddr); err != nil {
			log.Printf("API server listen error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	if err = app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	cleanupCancel()

	// Flushes pending tracker saves, releases long-polls, closes the store
	if err = svc.Shutdown(gracefulShutdownTimeout); err != nil {
		log.Printf("Service shutdown error: %v", err)
	}

	log.Println("Server exited")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"worklog-backend/config"
	"worklog-backend/internal/accounts"
	"worklog-backend/internal/api"
	"worklog-backend/internal/db"
	"worklog-backend/internal/kv"
	"worklog-backend/internal/localstore"
	"worklog-backend/internal/media"
	"worklog-backend/internal/mirror"
	"worklog-backend/internal/queue"
	"worklog-backend/internal/remote"
	"worklog-backend/internal/repo"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Remote.URL == "" || cfg.Remote.APIKey == "" {
		logger.Fatal("remote backend URL and API key must be configured")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	bolt, err := kv.OpenBolt(cfg.Storage.Path)
	if err != nil {
		logger.Fatalf("failed to open key-value store %s: %v", cfg.Storage.Path, err)
	}
	defer bolt.Close()
	logger.Println("key-value store opened")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	remoteClient := remote.NewHTTPClient(&cfg.Remote)
	pendingQueue := queue.NewService(bolt, logger, cfg.Sync.MaxAttempts)
	punchMirror := mirror.New(bolt)
	projectStore := localstore.NewGormProjects(gormDB)
	mediaStore := media.NewStore(cfg.Media.Root, bolt, logger)
	accountsSvc := accounts.NewService(remoteClient, logger)
	syncRepo := repo.New(remoteClient, pendingQueue, punchMirror, projectStore, logger)

	syncSvc := repo.NewSyncService(&cfg.Sync, syncRepo, logger)
	go syncSvc.Run(ctx)

	handler := api.NewHandler(syncRepo, accountsSvc, mediaStore, logger)
	router := api.NewRouter(&cfg.Server, handler)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}

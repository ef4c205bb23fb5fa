package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpapi "assetdesk-backend/internal/api/http"
	"assetdesk-backend/internal/config"
	"assetdesk-backend/internal/logger"
	"assetdesk-backend/internal/repository/postgres"
	"assetdesk-backend/internal/security"
	"assetdesk-backend/internal/service"
	"assetdesk-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Asset Desk Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize Storage
	logger.Info("Using local photo storage", "upload_dir", cfg.Storage.UploadDir)
	storageService, err := storage.NewLocalStorageService(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize photo storage", "error", err)
		log.Fatalf("Failed to initialize photo storage: %v", err)
	}

	// Initialize Services
	emailSvc := service.NewEmailService(cfg.Email.APIKey, cfg.Email.From, cfg.Email.FromName)
	authSvc := service.NewAuthService(store.UserRepository, tokenManager, emailSvc, cfg.Client.BaseURL)
	userSvc := service.NewUserService(store.UserRepository)
	itemSvc := service.NewItemService(store.ItemRepository, store.BorrowRepository, storageService)
	borrowSvc := service.NewBorrowService(
		store.BorrowRepository,
		store.ItemRepository,
		store.UserRepository,
		store.NotificationRepository,
		emailSvc,
	)
	noteSvc := service.NewNotificationService(store.NotificationRepository)

	// Initialize HTTP handlers
	handlers := &httpapi.Handlers{
		Auth:         httpapi.NewAuthHandler(authSvc),
		User:         httpapi.NewUserHandler(userSvc),
		Item:         httpapi.NewItemHandler(itemSvc, cfg.Storage.MaxFileSizeMB*1024*1024),
		Borrow:       httpapi.NewBorrowHandler(borrowSvc),
		Notification: httpapi.NewNotificationHandler(noteSvc),
		Photo:        httpapi.NewPhotoHandler(storageService),
	}
	middleware := httpapi.NewMiddleware(tokenManager, store.UserRepository)
	router := httpapi.NewRouter(handlers, middleware)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/loomwork/retention/internal/closure"
	"github.com/loomwork/retention/internal/config"
	"github.com/loomwork/retention/internal/filetrash"
	httpserver "github.com/loomwork/retention/internal/http"
	"github.com/loomwork/retention/internal/notification"
	"github.com/loomwork/retention/internal/plans"
	"github.com/loomwork/retention/internal/reaper"
	"github.com/loomwork/retention/internal/repository"
	"github.com/loomwork/retention/internal/storage"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := repository.NewDB(repository.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	// Initialize repositories
	orgsRepo := repository.NewOrganizationsRepository(db)
	archivesRepo := repository.NewArchivesRepository(db)
	trashRepo := repository.NewFileTrashRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	projectsRepo := repository.NewProjectsRepository(db)
	vacanciesRepo := repository.NewVacanciesRepository(db)
	filesRepo := repository.NewFilesRepository(db)
	usersRepo := repository.NewUsersRepository(db)

	// Initialize blob storage
	blobs, err := storage.NewFSStore(cfg.StorageDir)
	if err != nil {
		logger.Error("failed to initialize blob storage", "error", err)
		os.Exit(1)
	}

	// Initialize plan resolver
	resolver := plans.NewPostgresResolver(db, plans.Retention{
		ArchiveDays: cfg.DefaultArchiveRetentionDays,
		TrashDays:   cfg.DefaultTrashRetentionDays,
	})

	// Register closure checkers. Order is fixed: archive and purge phases
	// run in this order.
	checkers := []closure.Checker{
		closure.NewWalletChecker(walletRepo),
		closure.NewProjectsChecker(projectsRepo),
		closure.NewVacanciesChecker(vacanciesRepo),
		closure.NewFilesChecker(filesRepo, blobs),
	}

	orchestrator := closure.NewOrchestrator(orgsRepo, archivesRepo, resolver, checkers, logger)
	orchestrator.SetCheckTimeout(cfg.CheckTimeout)
	trashService := filetrash.NewService(filesRepo, trashRepo, orgsRepo, resolver, logger)

	// Initialize notifier: email when SMTP is configured, logs otherwise
	var notifier notification.Notifier = &notification.LogNotifier{Logger: logger}
	if cfg.HasSMTP() {
		emailService := notification.NewEmailService(notification.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
		})
		notifier = notification.NewEmailNotifier(emailService, usersRepo)
		logger.Info("email service enabled")
	}

	// Initialize reaper jobs
	expiryNotifier := reaper.NewExpiryNotifier(archivesRepo, orgsRepo, notifier, cfg.NotifyWindow, logger)
	archiveCleaner := reaper.NewArchiveCleaner(archivesRepo, orgsRepo, checkers, logger)
	fileTrashReaper := reaper.NewFileTrashReaper(trashRepo, filesRepo, blobs, logger)

	// Optional in-process schedule alongside the cron endpoints
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := reaper.NewScheduler(cfg.ReaperSchedule, expiryNotifier, archiveCleaner, fileTrashReaper, logger)
	if err := scheduler.Start(ctx); err != nil {
		logger.Error("failed to start reaper scheduler", "error", err)
		os.Exit(1)
	}

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:          logger,
		Orchestrator:    orchestrator,
		TrashService:    trashService,
		ExpiryNotifier:  expiryNotifier,
		ArchiveCleaner:  archiveCleaner,
		FileTrashReaper: fileTrashReaper,
		JWTSecret:       []byte(cfg.JWTSecret),
		JWTIssuer:       cfg.JWTIssuer,
		CronSecret:      cfg.CronSecret,
		Production:      cfg.IsProduction(),
		RateLimit:       cfg.RateLimit,
		SecurityHeaders: cfg.SecurityHeaders,
		MaxRequestBody:  cfg.MaxRequestBody,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}

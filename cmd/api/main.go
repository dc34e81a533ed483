package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relohub/relohub/internal/api"
	"github.com/relohub/relohub/internal/config"
	"github.com/relohub/relohub/internal/dispatch"
	"github.com/relohub/relohub/internal/domain"
	"github.com/relohub/relohub/internal/linkedin"
	"github.com/relohub/relohub/internal/logger"
	"github.com/relohub/relohub/internal/pipeline"
	"github.com/relohub/relohub/internal/repository"
	"github.com/relohub/relohub/internal/storage"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.GetDefault().WithError(err).Fatal("Failed to load config")
	}

	// Initialize logger
	appLogger := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "relohub-api",
		LogFile:     cfg.Log.File,
	})
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	credentialRepo := repository.NewCredentialRepository(db)
	postingRepo := repository.NewPostingRepository(db)
	repos := pipeline.Repos{
		Credentials: credentialRepo,
		Locations:   repository.NewLocationRepository(db),
		Titles:      repository.NewTitleRepository(db),
		Companies:   repository.NewCompanyRepository(db),
		Skills:      repository.NewSkillRepository(db),
		Postings:    postingRepo,
	}

	ctx := context.Background()

	// In-flight marker store shared with any pipeline workers
	var locker dispatch.Locker
	if cfg.Redis.Enabled {
		redisLocker, err := dispatch.NewRedisLocker(ctx, cfg.Redis.URL, "relohub")
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to connect to redis")
		}
		defer redisLocker.Close()
		locker = redisLocker
	} else {
		locker = dispatch.NewMemoryLocker()
	}
	dispatcher := dispatch.NewDispatcher(locker, appLogger)

	// Initialize S3-compatible storage for company logos
	objectStorage, err := storage.NewS3Storage(&storage.S3Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}

	// Pipeline wired behind the manual trigger endpoints
	clientCfg := &linkedin.Config{
		BaseURL: cfg.LinkedIn.BaseURL,
		Timeout: cfg.LinkedIn.RequestTimeout,
		Policy: linkedin.RetryPolicy{
			MaxAttempts: cfg.LinkedIn.MaxRetries,
			EvadeMin:    cfg.LinkedIn.EvadeMin,
			EvadeMax:    cfg.LinkedIn.EvadeMax,
		},
	}
	newClient := func(ctx context.Context, cred *domain.Credential) (pipeline.Client, error) {
		return linkedin.New(ctx, cred, credentialRepo, clientCfg)
	}
	pipe := pipeline.New(repos, newClient, objectStorage, dispatcher, appLogger, pipeline.Config{
		SearchPageSize:   cfg.LinkedIn.SearchPageSize,
		SearchOffsetCap:  cfg.LinkedIn.SearchOffsetCap,
		ListedWithin:     cfg.LinkedIn.ListedWithin,
		Keywords:         cfg.LinkedIn.DescriptionKeywords,
		Complements:      cfg.LinkedIn.KeywordComplements,
		ProcessBatchSize: cfg.Pipeline.ProcessBatchSize,
		DispatchBackoff:  cfg.Pipeline.DispatchBackoff,
		SearchLockTTL:    cfg.Pipeline.SearchLockTTL,
		ProcessLockTTL:   cfg.Pipeline.ProcessLockTTL,
	})

	// Setup router
	router := api.SetupRouter(postingRepo, pipe, appLogger, cfg.Server.Mode)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	dispatcher.Wait()
	appLogger.Info("Server exited")
}

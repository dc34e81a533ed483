package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

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
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "relohub-pipeline",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	runSearch := flag.Bool("search", false, "Run the search fan-out once and exit")
	runProcess := flag.Bool("process", false, "Run detail resolution once and exit")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	// Reinitialize logger with configured level and output
	appLogger = logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "relohub-pipeline",
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
	repos := pipeline.Repos{
		Credentials: credentialRepo,
		Locations:   repository.NewLocationRepository(db),
		Titles:      repository.NewTitleRepository(db),
		Companies:   repository.NewCompanyRepository(db),
		Skills:      repository.NewSkillRepository(db),
		Postings:    repository.NewPostingRepository(db),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// In-flight marker store: redis when configured, in-process otherwise
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
	if err := objectStorage.EnsureBucket(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
	}

	// Client factory binding one authenticated client per credential
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

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	// One-shot mode
	if *runSearch || *runProcess {
		if *runSearch {
			if err := pipe.RunSearchAll(ctx); err != nil {
				appLogger.WithError(err).Fatal("Search run failed")
			}
		}
		if *runProcess {
			if err := pipe.RunProcessAll(ctx); err != nil {
				appLogger.WithError(err).Fatal("Process run failed")
			}
		}
		dispatcher.Wait()
		appLogger.Info("Run completed")
		return
	}

	// Scheduled mode
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Pipeline.SearchSchedule, func() {
		if err := pipe.RunSearchAll(ctx); err != nil {
			appLogger.WithError(err).Error("Scheduled search run failed")
		}
	}); err != nil {
		appLogger.WithError(err).Fatal("Invalid search schedule")
	}
	if _, err := scheduler.AddFunc(cfg.Pipeline.ProcessSchedule, func() {
		if err := pipe.RunProcessAll(ctx); err != nil {
			appLogger.WithError(err).Error("Scheduled process run failed")
		}
	}); err != nil {
		appLogger.WithError(err).Fatal("Invalid process schedule")
	}

	appLogger.WithFields(logger.Fields{
		"search_schedule":  cfg.Pipeline.SearchSchedule,
		"process_schedule": cfg.Pipeline.ProcessSchedule,
	}).Info("Starting pipeline scheduler")
	scheduler.Start()

	<-ctx.Done()
	scheduler.Stop()
	dispatcher.Wait()
	appLogger.Info("Pipeline stopped")
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-ledger-backend/config"
	_ "resume-ledger-backend/docs" // Important for Swagger
	"resume-ledger-backend/internal/blob"
	"resume-ledger-backend/internal/delivery/http/middleware"
	v1 "resume-ledger-backend/internal/delivery/http/v1"
	"resume-ledger-backend/internal/domain"
	"resume-ledger-backend/internal/ledger"
	"resume-ledger-backend/internal/overlay"
	"resume-ledger-backend/internal/reconcile"
	"resume-ledger-backend/internal/usecase"
	"resume-ledger-backend/pkg/database"
	"resume-ledger-backend/pkg/logger"
	"resume-ledger-backend/pkg/redis"
	"resume-ledger-backend/pkg/security"
	"resume-ledger-backend/pkg/storage"
	"resume-ledger-backend/pkg/validation"

	"github.com/jackc/pgx/v5/pgxpool"
)

// @title           Resume Ledger Backend API
// @version         1.0
// @description     Reconciled resume directory over the Sui ledger with blob-backed avatars.
// @host            localhost:8080
// @BasePath        /v1
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting resume ledger backend", "port", cfg.Port, "env", cfg.AppEnv)

	securityLogger := security.NewSecurityLogger("resume-ledger-backend", cfg.AppEnv)
	defer securityLogger.Sync()

	ctx := context.Background()
	healthChecks := map[string]usecase.HealthCheck{}

	// 3. Setup Database (optional)
	var dbPool *pgxpool.Pool
	if cfg.DBUrl != "" {
		dbPool, err = database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			logger.Log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()
		healthChecks["postgres"] = dbPool.Ping

		eventRepo := security.NewSecurityEventRepository(dbPool)
		if err := eventRepo.EnsureSchema(ctx); err != nil {
			logger.Log.Warn("Security event table unavailable, events are logged only", "error", err)
		} else {
			securityLogger.SetPersistFunc(eventRepo.PersistEvent)
		}
	}

	// 4. Setup Redis (optional)
	if cfg.UpstashRedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, continuing without it", "error", err)
		} else {
			defer redis.Close()
			healthChecks["redis"] = redis.HealthCheck
		}
	}

	// 5. Setup Overlay Store
	overlayStore := newOverlayStore(ctx, cfg, dbPool)

	// 6. Setup Ledger
	ledgerClient := ledger.NewClient(ledger.ClientConfig{
		URL:        cfg.SuiRPCURL,
		Timeout:    cfg.RequestTimeout,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger.Log,
	})
	healthChecks["ledger"] = func(ctx context.Context) error {
		_, err := ledgerClient.LatestCheckpoint(ctx)
		return err
	}

	// 7. Setup Blob Store
	blobStore, err := newBlobStore(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to configure blob store", "backend", cfg.BlobBackend, "error", err)
		os.Exit(1)
	}

	// 8. Setup UseCases
	validate := validation.New()
	resumeUC := usecase.NewResumeUsecase(
		ledger.NewScanner(ledgerClient, cfg.EventPageLimit, logger.Log),
		ledger.NewFetcher(ledgerClient, cfg.FetchConcurrency, logger.Log),
		reconcile.New(logger.Log),
		overlayStore,
		usecase.NewDirectoryCache(),
		usecase.ResumeConfig{
			EventType:      cfg.EventType(),
			StructType:     cfg.ResumeStructType(),
			EventPageLimit: cfg.EventPageLimit,
		},
		logger.Log,
	)
	avatarUC := usecase.NewAvatarUsecase(
		blob.NewPublisher(blobStore, logger.Log),
		overlayStore,
		validate,
		usecase.AvatarConfig{
			MaxDimension:  cfg.AvatarMaxDimension,
			JPEGQuality:   cfg.AvatarJPEGQuality,
			DefaultEpochs: cfg.BlobDefaultEpochs,
			Deletable:     cfg.BlobDeletable,
		},
		logger.Log,
	)

	rateLimiter := middleware.NewRateLimiter(redis.Client(), securityLogger)
	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go rateLimiter.Cleanup(cleanupCtx, 5*time.Minute)

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ResumeUC:       resumeUC,
		ExportUC:       usecase.NewExportUsecase(resumeUC),
		AvatarUC:       avatarUC,
		SocialUC:       usecase.NewSocialUsecase(overlayStore, validate),
		HealthUC:       usecase.NewHealthUsecase(healthChecks),
		RateLimiter:    rateLimiter,
		UploadLimiter:  security.NewUploadLimiter(redis.Client(), cfg.UploadMaxPerMinute, cfg.UploadMaxPerDay),
		SecurityLogger: securityLogger,
		Validate:       validate,
		Logger:         logger.Log,
		Config:         cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

func newOverlayStore(ctx context.Context, cfg *config.Config, dbPool *pgxpool.Pool) domain.OverlayStore {
	switch cfg.OverlayBackend {
	case "redis":
		if client := redis.Client(); client != nil {
			return overlay.NewRedisStore(client)
		}
		logger.Log.Warn("OVERLAY_BACKEND=redis but Redis is not connected. Falling back to memory.")
	case "postgres":
		store := overlay.NewPostgresStore(dbPool)
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Log.Error("Failed to prepare overlay table", "error", err)
			os.Exit(1)
		}
		return store
	}
	return overlay.NewMemoryStore()
}

func newBlobStore(ctx context.Context, cfg *config.Config) (domain.BlobStore, error) {
	if cfg.BlobBackend == "s3" {
		client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Provider:        storage.S3Provider(cfg.S3Provider),
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
		})
		if err != nil {
			return nil, err
		}
		if err := storage.CheckBucket(ctx, client, cfg.S3Bucket); err != nil {
			logger.Log.Warn("S3 bucket check failed, uploads may fall back to inline", "bucket", cfg.S3Bucket, "error", err)
		}
		return blob.NewS3Store(client, blob.S3Config{
			Bucket:              cfg.S3Bucket,
			PublicBaseURL:       cfg.BlobPublicBaseURL,
			EpochDuration:       cfg.S3EpochDuration,
			StoragePricePerUnit: cfg.StoragePricePerUnit,
			WritePricePerUnit:   cfg.WritePricePerUnit,
			ConfirmTimeout:      cfg.BlobConfirmTimeout,
		}), nil
	}

	return blob.NewWalrusStore(blob.WalrusConfig{
		PublisherURL:        cfg.WalrusPublisherURL,
		AggregatorURL:       cfg.WalrusAggregatorURL,
		SendObjectTo:        cfg.WalrusSendObjectTo,
		StoragePricePerUnit: cfg.StoragePricePerUnit,
		WritePricePerUnit:   cfg.WritePricePerUnit,
		ConfirmTimeout:      cfg.BlobConfirmTimeout,
	}), nil
}

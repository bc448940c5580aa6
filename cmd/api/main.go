package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hirematrix-backend/config"
	_ "hirematrix-backend/docs" // Important for Swagger
	v1 "hirematrix-backend/internal/delivery/http/v1"
	"hirematrix-backend/internal/domain"
	"hirematrix-backend/internal/gateway"
	"hirematrix-backend/internal/infrastructure"
	"hirematrix-backend/internal/repository/postgres"
	"hirematrix-backend/internal/usecase"
	"hirematrix-backend/migrations"
	"hirematrix-backend/pkg/auth"
	"hirematrix-backend/pkg/database"
	"hirematrix-backend/pkg/email"
	"hirematrix-backend/pkg/lock"
	"hirematrix-backend/pkg/logger"
	"hirematrix-backend/pkg/redis"
	"hirematrix-backend/pkg/security"
	"hirematrix-backend/pkg/storage"
	"hirematrix-backend/pkg/validation"

	"github.com/jackc/pgx/v5/pgxpool"
)

// @title           HireMatrix Backend API
// @version         1.0
// @description     Multi-tenant recruitment portal: talent search, AI interviews and candidate onboarding.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting hirematrix backend", "port", cfg.Port)

	env := "development"
	if os.Getenv("GIN_MODE") == "release" {
		env = "production"
	}
	auditLog := security.InitSecurityLogger("hirematrix-backend", env)
	defer auditLog.Sync()

	ctx := context.Background()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	schemaVersion, migrated, err := database.Migrate(dbPool, migrations.FS)
	if err != nil {
		logger.Log.Error("Failed to apply migrations", "error", err)
		os.Exit(1)
	}
	if migrated {
		logger.Log.Info("Applied migrations", "version", schemaVersion)
	}

	// 4. Setup Redis (optional)
	var locker domain.SessionLocker = lock.NewMemoryLocker()
	var redisPing func(context.Context) error
	if cfg.UpstashRedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory locks and rate limits", "error", err)
		} else {
			locker = lock.NewRedisLocker(redis.Client())
			redisPing = redis.HealthCheck
		}
		defer redis.Close()
	}

	// 5. Setup optional side-effect sinks
	var archive domain.TranscriptArchive
	if cfg.TranscriptBucket != "" {
		s3Client, err := storage.NewS3Client(ctx, storage.S3Config{
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.TranscriptBucket,
			Endpoint:        cfg.S3Endpoint,
		})
		if err == nil {
			checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = storage.CheckBucket(checkCtx, s3Client, cfg.TranscriptBucket)
			cancel()
		}
		if err != nil {
			logger.Log.Warn("Transcript archive disabled", "error", err)
		} else {
			archive = infrastructure.NewTranscriptArchive(storage.NewBucket(s3Client, cfg.TranscriptBucket))
		}
	}

	var events domain.EventPublisher
	if cfg.RabbitMQURL != "" {
		publisher, err := infrastructure.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.EventsQueue)
		if err != nil {
			logger.Log.Warn("Lifecycle events disabled", "error", err)
		} else {
			events = publisher
			defer publisher.Close()
		}
	}

	// 6. Setup Repositories and Gateways
	userRepo := postgres.NewUserRepository(dbPool)
	interviewRepo := postgres.NewInterviewRepository(dbPool)
	applicationRepo := postgres.NewApplicationRepository(dbPool)

	interviewEngine := gateway.NewInterviewEngineClient(cfg.InterviewAPIURL, cfg.EngineTimeout)
	talentEngine := gateway.NewTalentSearchClient(cfg.TalentAPIURL, cfg.EngineTimeout)
	notifier := gateway.NotifierChain{
		gateway.NewWebhookNotifier(cfg.NotifyWebhookURL, cfg.NotifyWebhookToken, cfg.NotifyTimeout),
		gateway.NewEmailNotifier(email.NewEmailService(email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})),
	}
	if !notifier.Enabled() {
		logger.Log.Warn("No notification channel configured - credentials are returned to the recruiter only")
	}

	// 7. Setup UseCases
	validate := validation.New()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	loginGuard := security.NewLoginTracker(redis.Client(), security.DefaultLoginTrackerConfig())
	authUC := usecase.NewAuthUsecase(userRepo, tokens, loginGuard)
	userUC := usecase.NewUserUsecase(userRepo, validate)
	interviewUC := usecase.NewInterviewUsecase(interviewRepo, interviewEngine, locker, archive, events, validate, usecase.InterviewConfig{
		LockTTL:         cfg.SessionLockTTL,
		CostPerQuestion: cfg.InterviewCostPerQuestion,
	})
	onboardingUC := usecase.NewOnboardingUsecase(interviewRepo, applicationRepo, userRepo, interviewEngine, notifier, events, validate, usecase.OnboardingConfig{
		EmailDomain: cfg.CandidateEmailDomain,
		LoginURL:    cfg.CandidateLoginURL,
	})
	talentUC := usecase.NewTalentUsecase(talentEngine, validate)
	healthUC := usecase.NewHealthUsecase(func(ctx context.Context) (map[string]interface{}, error) {
		return database.Status(ctx, dbPool)
	}, redisPing)

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:       authUC,
		UserUC:       userUC,
		InterviewUC:  interviewUC,
		OnboardingUC: onboardingUC,
		TalentUC:     talentUC,
		HealthUC:     healthUC,
		Tokens:       tokens,
		Config:       cfg,
	})

	// 9. Start Server
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

	waitForShutdown(srv, dbPool)
}

func waitForShutdown(srv *http.Server, dbPool *pgxpool.Pool) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting", "open_connections", dbPool.Stat().TotalConns())
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/codeview-ai/codeview-api/internal/config"
	"github.com/codeview-ai/codeview-api/internal/database"
	"github.com/codeview-ai/codeview-api/internal/handler"
	"github.com/codeview-ai/codeview-api/internal/middleware"
	"github.com/codeview-ai/codeview-api/internal/models"
	"github.com/codeview-ai/codeview-api/internal/observability"
	"github.com/codeview-ai/codeview-api/internal/repository"
	"github.com/codeview-ai/codeview-api/internal/router"
	"github.com/codeview-ai/codeview-api/internal/service"
	"github.com/codeview-ai/codeview-api/pkg/ai"
	cloud "github.com/codeview-ai/codeview-api/pkg/cloudinary"
	"github.com/codeview-ai/codeview-api/pkg/sandbox"
	"github.com/codeview-ai/codeview-api/pkg/voice"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Interviewer{},
		&models.Interview{},
		&models.SessionEvent{},
		&models.GradingReport{},
		&models.Resume{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	model, err := buildModelClient(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create model client: %v", err)
	}

	executor, err := sandbox.NewDockerExecutor(sandbox.Config{
		Host:          cfg.DockerHost,
		Timeout:       cfg.ExecutionTimeout,
		MemoryLimitMB: int64(cfg.CodeRunMemoryMB),
		CPUShares:     int64(cfg.CodeRunCPUShares),
		Logger:        logger,
	})
	if err != nil {
		log.Fatalf("failed to create sandbox executor: %v", err)
	}
	defer executor.Close()

	voiceClient, err := voice.New(voice.Config{
		APIKey:  cfg.VoiceAPIKey,
		BaseURL: cfg.VoiceBaseURL,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("failed to create voice client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	interviewRepo := repository.NewInterviewRepository(db)
	interviewerRepo := repository.NewInterviewerRepository(db)
	eventRepo := repository.NewSessionEventRepository(db)
	reportRepo := repository.NewGradingReportRepository(db)
	resumeRepo := repository.NewResumeRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feedService := service.NewFeedService(redisClient, natsConn, "codeview", logger)
	feedService.Start(ctx)

	interviewService := service.NewInterviewService(interviewRepo, interviewerRepo, redisClient, cfg.InterviewCacheTTL, validate, logger)
	callService := service.NewCallService(interviewRepo, eventRepo, voiceClient, feedService, validate, logger)
	executionService := service.NewExecutionService(interviewRepo, eventRepo, executor, model, feedService, validate, logger, service.ExecutionConfig{
		Timeout:       cfg.ExecutionTimeout,
		MemoryLimitMB: cfg.CodeRunMemoryMB,
		CPUShares:     cfg.CodeRunCPUShares,
	})
	hintService := service.NewHintService(interviewRepo, eventRepo, model, feedService, validate, logger)
	reportService := service.NewReportService(interviewRepo, eventRepo, reportRepo, model, cfg.AIProvider, logger)

	deps := router.Dependencies{
		InterviewHandler: handler.NewInterviewHandler(interviewService, logger),
		CallHandler:      handler.NewCallHandler(callService, logger),
		CodingHandler:    handler.NewCodingHandler(executionService, hintService, logger),
		ReportHandler:    handler.NewReportHandler(reportService, logger),
		FeedHandler:      handler.NewFeedHandler(interviewService, feedService, logger),
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
	}

	if cfg.CloudinaryCloudName != "" {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}

		resumeService := service.NewResumeService(uploader, interviewRepo, resumeRepo, cfg.ResumeMaxSizeMB, logger)
		deps.ResumeHandler = handler.NewResumeHandler(resumeService, logger)
	} else {
		logger.Warn().Msg("cloudinary not configured; resume endpoints disabled")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	app.Get("/metrics", observability.MetricsHandler())
	router.Register(app, cfg, deps)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildModelClient(cfg config.Config, logger zerolog.Logger) (ai.Client, error) {
	if cfg.AIProvider == "anthropic" {
		return ai.NewAnthropicClient(ai.AnthropicConfig{
			APIKey: cfg.AnthropicAPIKey,
			Logger: logger,
		})
	}
	return ai.NewOpenAIClient(ai.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Logger: logger,
	})
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}

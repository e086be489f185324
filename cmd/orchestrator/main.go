package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"courseai/internal/config"
	"courseai/internal/logger"
	"courseai/internal/orchestrator/generation"
	"courseai/internal/pgmq"
	"courseai/internal/pubsub"
	"courseai/internal/repository"
	"courseai/internal/service"
	"courseai/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	// Parse mode flag
	mode := flag.String("mode", "generation", "Orchestrator mode: generation")
	flag.Parse()

	envErr := godotenv.Load()
	logger := logger.New()
	if envErr != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}

	// Set up context with graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	initCtx, initCancel := context.WithTimeout(ctx, 30*time.Second)
	defer initCancel()

	pool, err := repository.NewPool(initCtx, cfg.DBConnectionString, cfg.Environment == "development")
	if err != nil {
		logger.Fatal().Msgf("Failed to connect to database: %v", err)
	}
	defer pool.Close()
	logger.Info().Msg("Database connection established")

	pgmqClient := pgmq.New(pool)

	switch *mode {
	case "generation":
		var publisher pubsub.Publisher = pubsub.NoopPublisher{Logger: logger}
		if cfg.GCPProjectID != "" {
			pubSubPublisher, err := pubsub.NewPublisher(initCtx, cfg)
			if err != nil {
				logger.Fatal().Msgf("Failed to create Pub/Sub publisher: %v", err)
			}
			defer func() { _ = pubSubPublisher.Close() }()
			publisher = pubSubPublisher
		}

		apiKey, err := service.ResolveGenerationAPIKey(initCtx, cfg, logger)
		if err != nil {
			logger.Fatal().Msgf("Failed to resolve generation API key: %v", err)
		}
		generator, err := service.NewGenerator(cfg, apiKey, logger)
		if err != nil {
			logger.Fatal().Msgf("Failed to create generator: %v", err)
		}
		archive, err := storage.NewArchiveFromConfig(initCtx, cfg, logger)
		if err != nil {
			logger.Fatal().Msgf("Failed to create output archive: %v", err)
		}

		courseSvc := service.NewCourseService(repository.NewCourseRepo(pool), publisher, cfg.PubSubCourseEventsTopic, logger)
		generationSvc := service.NewGenerationService(generator, service.NewOutlineParser(), courseSvc, archive, logger)
		jobSvc := service.NewGenerationJobService(repository.NewGenerationJobRepo(pool), pgmqClient, cfg.GenerationQueueName, generationSvc, logger)

		err = generation.Run(ctx, logger, pgmqClient, jobSvc, generation.Options{
			QueueName:         cfg.GenerationQueueName,
			VisibilityTimeout: cfg.GenerationVisibilityTimeout,
			PollTimeout:       cfg.GenerationPollTimeoutSec,
		})
		if err != nil {
			logger.Fatal().Msgf("%s orchestrator failed: %v", *mode, err)
		}
	default:
		logger.Fatal().Msgf("Invalid mode: %s", *mode)
	}

	logger.Info().Msgf("%s orchestrator stopped gracefully", *mode)
}

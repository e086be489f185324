package router

import (
	"context"
	"net/http"

	"courseai/internal/api/v1/handler"
	"courseai/internal/config"
	"courseai/internal/middleware"
	"courseai/internal/pgmq"
	"courseai/internal/pubsub"
	"courseai/internal/redis"
	"courseai/internal/repository"
	"courseai/internal/service"
	"courseai/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// New wires repositories, services and handlers and returns the HTTP
// handler with a cleanup func that releases the connections it opened.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (http.Handler, func(), error) {
	logger.Info().Str("environment", cfg.Environment).Msg("App environment loaded")

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (http.Handler, func(), error) {
		cleanup()
		return nil, nil, err
	}

	// 1. Database
	pool, err := repository.NewPool(ctx, cfg.DBConnectionString, cfg.Environment == "development")
	if err != nil {
		return fail(err)
	}
	closers = append(closers, pool.Close)
	logger.Info().Msg("Database connection successful")

	// 2. Session revocation list
	var revocations service.RevocationStore
	if cfg.RedisAddr != "" {
		redisClient, err := redis.NewClient(ctx, cfg, logger)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		revocations = redisClient
	} else {
		logger.Warn().Msg("REDIS_ADDR not set, logout will not revoke tokens")
	}

	// 3. Course event publisher
	var publisher pubsub.Publisher = pubsub.NoopPublisher{Logger: logger}
	if cfg.GCPProjectID != "" {
		pubSubPublisher, err := pubsub.NewPublisher(ctx, cfg)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { _ = pubSubPublisher.Close() })
		publisher = pubSubPublisher
	}

	// 4. Generation model and failed-output archive
	apiKey, err := service.ResolveGenerationAPIKey(ctx, cfg, logger)
	if err != nil {
		return fail(err)
	}
	generator, err := service.NewGenerator(cfg, apiKey, logger)
	if err != nil {
		return fail(err)
	}
	archive, err := storage.NewArchiveFromConfig(ctx, cfg, logger)
	if err != nil {
		return fail(err)
	}

	verifier, err := service.NewCredentialVerifier(cfg)
	if err != nil {
		return fail(err)
	}

	// 5. Repositories & services & handlers
	userRepo := repository.NewUserRepo(pool)
	courseRepo := repository.NewCourseRepo(pool)
	enrollmentRepo := repository.NewEnrollmentRepo(pool)
	reviewRepo := repository.NewReviewRepo(pool)
	jobRepo := repository.NewGenerationJobRepo(pool)
	blogRepo := repository.NewBlogRepo(pool)

	courseSvc := service.NewCourseService(courseRepo, publisher, cfg.PubSubCourseEventsTopic, logger)
	generationSvc := service.NewGenerationService(generator, service.NewOutlineParser(), courseSvc, archive, logger)
	jobSvc := service.NewGenerationJobService(jobRepo, pgmq.New(pool), cfg.GenerationQueueName, generationSvc, logger)
	userSvc := service.NewUserService(userRepo, courseRepo, enrollmentRepo, verifier, publisher, cfg.PubSubCourseEventsTopic, logger)
	reviewSvc := service.NewReviewService(reviewRepo, courseSvc, publisher, cfg.PubSubCourseEventsTopic, logger)
	blogSvc := service.NewBlogService(blogRepo, logger)
	statsSvc := service.NewStatsService(userRepo, courseRepo, logger)
	sessionSvc := service.NewSessionService(cfg.JWTSecret, cfg.TokenTTL, userRepo, revocations, logger)

	userHandler := handler.NewUserHandler(userSvc, sessionSvc, courseSvc, logger)
	courseHandler := handler.NewCourseHandler(courseSvc, generationSvc, logger)
	generationHandler := handler.NewGenerationHandler(generationSvc, jobSvc, logger)
	reviewHandler := handler.NewReviewHandler(reviewSvc, logger)
	blogHandler := handler.NewBlogHandler(blogSvc, logger)
	statsHandler := handler.NewStatsHandler(statsSvc, logger)
	healthHandler := handler.NewHealthHandler(pool, logger)

	// 6. Routes
	apiRouter, api := SetupHumaAPI(cfg, middleware.AuthMiddleware(sessionSvc, logger), logger)
	RegisterRoutes(api, userHandler, courseHandler, generationHandler, reviewHandler, blogHandler, statsHandler, healthHandler, logger)

	mux := chi.NewRouter()
	mux.Mount("/v1", apiRouter)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	return middleware.LoggerMiddleware(logger)(c.Handler(mux)), cleanup, nil
}

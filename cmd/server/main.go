package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quizforge/quiz-service/internal/cache"
	"github.com/quizforge/quiz-service/internal/config"
	"github.com/quizforge/quiz-service/internal/handlers"
	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/repositories/postgres"
	"github.com/quizforge/quiz-service/internal/services"
	"github.com/quizforge/quiz-service/internal/utils"
	"github.com/quizforge/quiz-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	var logger utils.Logger
	if cfg.IsDevelopment() {
		logger = utils.NewDevelopmentLogger()
	} else {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	}
	slogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Quiz{},
		&models.Question{},
		&models.Choice{},
		&models.TextKey{},
		&models.MatchPair{},
		&models.Attempt{},
		&models.Answer{},
		&models.AnswerMatchPair{},
	); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	var cacheService cache.CacheService = cache.NoopCache{}
	if redisClient, err := pkg.NewRedisClient(cfg); err != nil {
		logger.Warn("Redis unavailable, caching disabled", "error", err)
	} else {
		cacheService = cache.NewRedisCache(redisClient, slogger)
		defer redisClient.Close()
	}

	publisher, err := config.LoadEventConfig().CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	validator := utils.NewValidator()
	repo := postgres.NewRepository(db)

	authService := services.NewAuthService(repo, cfg.JWTSecret, slogger, validator)
	quizService := services.NewQuizService(repo, cacheService, slogger, validator)
	attemptService := services.NewAttemptService(repo, publisher, slogger, validator)
	analyticsService := services.NewAnalyticsService(repo, cacheService, slogger)
	exportService := services.NewExportService(repo, slogger)

	router := gin.New()
	router.Use(utils.LoggerMiddleware(logger), gin.Recovery())

	handlerManager := handlers.NewHandlerManager(
		authService,
		quizService,
		attemptService,
		analyticsService,
		exportService,
		logger,
	)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	logger.Info("Server stopped")
}

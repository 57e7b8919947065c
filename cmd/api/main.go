package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"daily-spark/internal/adapter"
	"daily-spark/internal/cache"
	"daily-spark/internal/config"
	"daily-spark/internal/database"
	"daily-spark/internal/domain"
	"daily-spark/internal/handler"
	"daily-spark/internal/logger"
	"daily-spark/internal/mailer"
	"daily-spark/internal/middleware"
	"daily-spark/internal/repository"
	"daily-spark/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// requestLogger logs every HTTP request with its outcome and duration.
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
		)
		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	db, err := database.NewSQLXPostgresDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := database.RunMigrations("file://migrations", cfg.GetDSN()); err != nil {
		appLogger.Fatal("Failed to run migrations", zap.Error(err))
	}
	appLogger.Info("Database migrations applied")

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)
	appLogger.Info("Redis cache initialized")

	// Repositories
	catalogRepo := repository.NewCatalogDatabaseAdapter(db)
	progressRepo := repository.NewProgressDatabaseAdapter(db)
	dailySetRepo := repository.NewDailySetDatabaseAdapter(db)
	attemptRepo := repository.NewAttemptDatabaseAdapter(db)
	userRepo := repository.NewUserDatabaseAdapter(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Services
	clock := domain.SystemClock{}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	notifier := mailer.NewNotifier(cfg.SMTP)

	rotationService := service.NewRotationService(
		catalogRepo, progressRepo, dailySetRepo, userRepo,
		clock, rng, cfg.Rotation.CandidatePoolSize,
	)
	learningService := service.NewLearningService(
		catalogRepo, progressRepo, dailySetRepo, attemptRepo, userRepo,
		txManager, clock,
	)
	catalogService := service.NewCatalogService(catalogRepo, userRepo, txManager, cacheAdapter)
	authService, err := service.NewAuthService(userRepo, notifier, cfg, clock)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	appLogger.Info("Services initialized")

	// Handlers
	learningHandler := handler.NewLearningHandler(rotationService, learningService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	authHandler := handler.NewAuthHandler(authService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		MaxAge:       300,
	}))
	app.Use(recover.New())

	apiGroup := app.Group("/api")

	// Auth routes
	authGroup := apiGroup.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/verify", authHandler.VerifyEmail)
	authGroup.Post("/request-password-reset", authHandler.RequestPasswordReset)
	authGroup.Post("/reset-password", authHandler.ResetPassword)

	// Catalog routes
	apiGroup.Get("/categories", catalogHandler.GetCategories)
	apiGroup.Get("/topics", catalogHandler.GetTopics)
	apiGroup.Post("/topics", middleware.Protected(authService), catalogHandler.CreateTopic)
	apiGroup.Put("/users/me/interests", middleware.Protected(authService), catalogHandler.UpdateInterests)

	// Learning routes (all protected)
	protected := middleware.Protected(authService)
	apiGroup.Get("/daily", protected, learningHandler.GetDailyTopics)
	apiGroup.Post("/daily/refresh", protected, learningHandler.RefreshDailyTopics)
	apiGroup.Get("/topic/:topicId", protected, learningHandler.GetTopicContent)
	apiGroup.Post("/topic/:topicId/mark-read", protected, learningHandler.MarkTopicAsRead)
	apiGroup.Get("/quiz/:topicId", protected, learningHandler.GetQuiz)
	apiGroup.Post("/quiz/:topicId/submit", protected, learningHandler.SubmitQuiz)
	apiGroup.Get("/progress", protected, learningHandler.GetUserProgress)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}

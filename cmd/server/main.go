package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"

	"github.com/fitchallenge/challenge-backend/internal/cache"
	"github.com/fitchallenge/challenge-backend/internal/config"
	"github.com/fitchallenge/challenge-backend/internal/database"
	"github.com/fitchallenge/challenge-backend/internal/events"
	"github.com/fitchallenge/challenge-backend/internal/handlers"
	"github.com/fitchallenge/challenge-backend/internal/logging"
	"github.com/fitchallenge/challenge-backend/internal/mailer"
	"github.com/fitchallenge/challenge-backend/internal/middleware"
	"github.com/fitchallenge/challenge-backend/internal/notify"
	"github.com/fitchallenge/challenge-backend/internal/repository"
	"github.com/fitchallenge/challenge-backend/internal/repository/memory"
	"github.com/fitchallenge/challenge-backend/internal/routes"
	"github.com/fitchallenge/challenge-backend/internal/scoring"
	"github.com/fitchallenge/challenge-backend/internal/services"
	"github.com/fitchallenge/challenge-backend/internal/verification"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	logLevel := logging.ParseLevel(cfg.LogLevel)
	logging.Setup(logLevel)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if err := cfg.Challenge.Validate(); err != nil {
		slog.Error("invalid challenge configuration", "error", err)
		os.Exit(1)
	}

	// Record store
	var (
		repo         *repository.Repository
		db           *gorm.DB
		ping         func() error
		pgLogHandler *logging.PGHandler
	)
	if cfg.UseMemoryStore() {
		repo, _ = memory.NewRepository()
		slog.Warn("using in-memory store, data will not survive a restart")
	} else {
		if cfg.DBPassword == "" {
			slog.Error("DB_PASSWORD environment variable is required")
			os.Exit(1)
		}
		if err := database.Connect(cfg); err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(database.DB); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		db = database.DB
		ping = database.Ping
		repo = repository.NewRepository(db)

		// PostgreSQL log handler (ERROR+ async batch)
		pgLogHandler = logging.NewPGHandler(db)
		slog.SetDefault(slog.New(logging.NewMultiHandler(
			logging.NewStdoutHandler(logLevel),
			pgLogHandler,
		)))
	}

	// Retention: system logs (30 days) and processed digest entries
	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, repo.Digests, cfg.DigestRetention, cleanupDone)

	// Mail and events
	var sender mailer.Sender = mailer.LogSender{}
	var producer *events.Producer
	if cfg.KafkaEnabled() {
		producer = events.NewProducer(cfg.KafkaBrokers)
		sender = mailer.NewKafkaSender(producer, cfg.KafkaEmailTopic)
		slog.Info("kafka enabled", "brokers", cfg.KafkaBrokers)
	}

	// Leaderboard cache
	var boards services.BoardCache
	var redisClient *cache.Client
	if cfg.CacheEnabled() {
		client, err := cache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			slog.Warn("redis unavailable, leaderboards will not be cached", "error", err.Error())
		} else {
			redisClient = client
			boards = cache.NewBoards(client, cfg.LeaderboardCacheTTL)
			slog.Info("leaderboard cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.LeaderboardCacheTTL.String())
		}
	}

	// Core
	engine := scoring.NewEngine(cfg.Challenge)
	composer := notify.NewComposer(cfg.MailFrom, cfg.AppBaseURL)
	dispatcher := notify.NewDispatcher(repo, sender, composer, cfg.MailTimeout)
	batcher := notify.NewBatcher(repo, sender, composer, cfg.MailTimeout)

	pipeline := verification.NewPipeline(dispatcher.Steps()...).WithRetry(2, 500*time.Millisecond)
	if producer != nil {
		pipeline.Use(events.NewVerificationPublisher(producer, cfg.KafkaVerificationTopic))
	}
	machine := verification.NewMachine(repo.Workouts, pipeline)
	slog.Info("verification pipeline ready", "steps", pipeline.Steps())

	// Services
	workoutService := services.NewWorkoutService(repo.Workouts, engine).WithCache(boards)
	leaderboardService := services.NewLeaderboardService(repo, engine).WithCache(boards)
	reviewService := services.NewReviewService(repo, machine)
	profileService := services.NewProfileService(repo.Users, services.NewContentFilter()).WithCache(boards)
	inboxService := services.NewInboxService(repo.Notifications)

	// Handlers
	storeName := "postgres"
	if cfg.UseMemoryStore() {
		storeName = "memory"
	}
	h := routes.Handlers{
		Health:        handlers.NewHealthHandler(ping, storeName),
		Workouts:      handlers.NewWorkoutHandler(workoutService),
		Leaderboard:   handlers.NewLeaderboardHandler(leaderboardService),
		Notifications: handlers.NewNotificationHandler(inboxService),
		Profile:       handlers.NewProfileHandler(profileService),
		Admin:         handlers.NewAdminHandler(reviewService, batcher),
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, repo.Users, profileService, h)

	// Digest ticker
	digestCtx, stopDigest := context.WithCancel(context.Background())
	go batcher.Run(digestCtx, cfg.DigestInterval)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	stopDigest()
	close(cleanupDone)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			slog.Error("kafka producer close error", "error", err)
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)

	// Close database connections
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				slog.Error("database close error", "error", err)
			}
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seatkeep/api/routes"
	"seatkeep/internal/payments"
	"seatkeep/internal/shared/config"
	"seatkeep/internal/shared/database"
	"seatkeep/pkg/logger"
	"seatkeep/pkg/messaging"
	"seatkeep/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		// Check if we're in production/container mode
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	// Load config
	cfg := config.Load()

	// Set Gin mode (debug/release)
	gin.SetMode(cfg.GinMode)

	// Initialize DB
	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Seat lifecycle event bus
	publisher, err := messaging.NewPublisher(cfg.Messaging)
	if err != nil {
		appLogger.Error("Failed to initialize event bus, continuing without seat events", slog.Any("error", err))
		publisher = messaging.NoopPublisher{}
	}
	defer publisher.Close()

	// Initialize Rate Limiter
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && db.GetRedisClient() != nil {
		rateLimiterConfig := &ratelimit.Config{
			Enabled:             cfg.RateLimit.Enabled,
			WindowDuration:      cfg.RateLimit.WindowDuration,
			DefaultRequests:     cfg.RateLimit.DefaultRequests,
			PublicRequests:      cfg.RateLimit.PublicRequests,
			ReservationRequests: cfg.RateLimit.ReservationRequests,
			CheckinRequests:     cfg.RateLimit.CheckinRequests,
			AdminRequests:       cfg.RateLimit.AdminRequests,
			HealthRequests:      cfg.RateLimit.HealthRequests,
			WhitelistedIPs:      cfg.RateLimit.WhitelistedIPs,
		}

		rateLimiter = ratelimit.NewRateLimiter(db.GetRedisClient(), rateLimiterConfig)
		appLogger.Info("Rate limiter initialized",
			slog.Bool("enabled", cfg.RateLimit.Enabled),
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	appRouter := routes.NewRouter(cfg, db, publisher)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	// Hold sweeper
	if jobs := appRouter.Jobs(); jobs != nil {
		jobs.Start(workerCtx)
		defer jobs.Stop()
	}

	// Payment result listener
	if cfg.Payments.ListenerEnabled {
		stop := startPaymentListener(workerCtx, cfg, payments.NewListener(appRouter.Reservations()))
		defer stop()
	}

	// Setup router with rate limiter
	router := setupRouter(appRouter, rateLimiter)

	// HTTP server
	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("🚀 Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("api_base", fmt.Sprintf("http://localhost:%s%s", cfg.Port, cfg.GetAPIBasePath())),
			slog.String("version", Version),
			slog.String("commit", GitCommit),
			slog.String("built", BuildTime),
			slog.String("database", db.Driver()),
			slog.Bool("redis_cache", db.GetRedisClient() != nil),
			slog.Bool("rate_limiting", rateLimiter != nil),
			slog.String("event_bus", cfg.Messaging.Bus),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

// startPaymentListener attaches the listener to the configured bus and returns its stop func
func startPaymentListener(ctx context.Context, cfg *config.Config, listener *payments.Listener) func() {
	appLogger := logger.GetDefault()

	switch cfg.Messaging.Bus {
	case "kafka":
		consumerConfig := payments.DefaultConsumerConfig()
		consumerConfig.Brokers = cfg.Messaging.KafkaBrokers
		consumerConfig.GroupID = cfg.Payments.KafkaGroupID
		consumerConfig.Topics = []string{cfg.Payments.KafkaTopic}

		consumer, err := payments.NewKafkaConsumer(consumerConfig, listener)
		if err != nil {
			appLogger.Error("Failed to start payment consumer", slog.Any("error", err))
			return func() {}
		}
		consumer.Start(ctx, cfg.Payments.Workers)
		return func() {
			if err := consumer.Stop(); err != nil {
				appLogger.Error("Error stopping payment consumer", slog.Any("error", err))
			}
		}

	case "rabbitmq":
		consumerCtx, cancel := context.WithCancel(ctx)
		consumer := payments.NewAMQPConsumer(cfg.Messaging.RabbitMQURL, cfg.Payments.RabbitMQQueue, 0, listener)
		go consumer.Run(consumerCtx)
		return cancel

	default:
		appLogger.Warn("Payment listener enabled but no event bus configured", slog.String("bus", cfg.Messaging.Bus))
		return func() {}
	}
}

func setupRouter(appRouter *routes.Router, rateLimiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	// Built-in middleware: logs requests + recovers from panics
	engine.Use(RequestLoggerMiddleware(appLogger), gin.Recovery())

	// CORS configuration
	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true // allow every origin dynamically
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Idempotency-Key", "X-RateLimit-*"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Global rate limiting middleware (applied to all routes)
	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
		appLogger.Info("Rate limiting middleware applied to all routes")
	}

	appRouter.SetupRoutes(engine)

	return engine
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		l.LogHTTPRequest(c, duration)
	}
}

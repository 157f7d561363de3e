package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-data-service/internal/api/handlers"
	"github.com/stitts-dev/fpl-data-service/internal/api/middleware"
	"github.com/stitts-dev/fpl-data-service/internal/config"
	"github.com/stitts-dev/fpl-data-service/internal/fpl"
	"github.com/stitts-dev/fpl-data-service/internal/services"
	"github.com/stitts-dev/fpl-data-service/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Initialize structured logger with service context
	structuredLogger := logger.InitLogger("", cfg.IsDevelopment())
	logger.WithService("fpl-data-service").WithFields(logrus.Fields{
		"version":     "1.0.0",
		"environment": cfg.Env,
		"port":        cfg.Port,
	}).Info("Starting FPL Data Service")

	// Setup Gin mode
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to Redis
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.WithService("fpl-data-service").Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.WithService("fpl-data-service").Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize services
	store := services.NewRedisStore(redisClient, cfg.CacheTTL(), structuredLogger)
	circuitBreakerService := services.NewCircuitBreakerService(
		cfg.CircuitBreakerThreshold,
		cfg.ExternalAPITimeout,
		structuredLogger,
	)
	fplClient := fpl.NewClient(cfg.FPLBaseURL, cfg.ExternalAPITimeout, structuredLogger)

	coordinator := services.NewSnapshotCoordinator(store, circuitBreakerService, cfg.CacheTTL(), structuredLogger)
	coordinator.Register(services.DatasetBootstrap, services.KeyBootstrap, fplClient.FetchBootstrap)
	coordinator.Register(services.DatasetFixtures, services.KeyFixtures, fplClient.FetchFixtures)

	scheduler := services.NewRefreshScheduler(coordinator, structuredLogger)
	if cfg.EnableBackgroundJobs {
		if err := scheduler.Start(cfg.RefreshSchedule); err != nil {
			logger.WithService("fpl-data-service").Fatalf("Failed to start refresh scheduler: %v", err)
		}
		defer scheduler.Stop()
	}

	// Initialize router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.CorsOrigins))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(structuredLogger))

	rateLimiter := middleware.NewRateLimiter(redisClient, cfg.RateLimitMax, cfg.RateLimitWindow(), structuredLogger)

	// Initialize handlers
	playerHandler := handlers.NewPlayerHandler(coordinator, structuredLogger)
	fixtureHandler := handlers.NewFixtureHandler(coordinator, structuredLogger)
	adminHandler := handlers.NewAdminHandler(coordinator, scheduler, structuredLogger)
	healthHandler := handlers.NewHealthHandler(redisClient, coordinator, scheduler, circuitBreakerService, structuredLogger)

	// Setup API routes
	apiV1 := router.Group("/api/v1")
	apiV1.Use(rateLimiter.Middleware())
	{
		apiV1.GET("/players/search", playerHandler.SearchPlayers)
		apiV1.GET("/players/resolve", playerHandler.ResolvePlayer)
		apiV1.GET("/players/top", playerHandler.TopPlayersByPrice)
		apiV1.GET("/players/unavailable", playerHandler.UnavailablePlayers)
		apiV1.GET("/players/:id", playerHandler.GetPlayer)

		apiV1.GET("/fixtures/difficulty", fixtureHandler.GetFixtureDifficulty)
		apiV1.GET("/gameweeks/current", fixtureHandler.GetCurrentGameweek)

		apiV1.POST("/admin/refresh", adminHandler.ForceRefresh)
	}

	// Health check endpoints (support both GET and HEAD)
	router.GET("/health", healthHandler.GetHealth)
	router.HEAD("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)
	router.HEAD("/ready", healthHandler.GetReady)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.WithService("fpl-data-service").WithField("port", cfg.Port).Info("FPL data service started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithService("fpl-data-service").Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.WithService("fpl-data-service").Info("Shutting down FPL data service...")

	// The server has 5 seconds to finish the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithService("fpl-data-service").Fatalf("FPL data service forced to shutdown: %v", err)
	}

	logger.WithService("fpl-data-service").Info("FPL data service exited")
}

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

	"github.com/scoutlab/vexscout/internal/api"
	"github.com/scoutlab/vexscout/internal/api/middleware"
	"github.com/scoutlab/vexscout/internal/engine"
	"github.com/scoutlab/vexscout/internal/providers"
	"github.com/scoutlab/vexscout/internal/services"
	"github.com/scoutlab/vexscout/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	logger := logrus.StandardLogger()
	if cfg.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.RobotEventsAPIKey == "" {
		logger.Warn("ROBOTEVENTS_API_KEY is not set, event fetches will be rejected upstream")
	}

	// Connect to Redis. The service still works without it: analyses are
	// recomputed every request and overrides live in process memory.
	var cacheService services.Cache
	var overrideStore services.OverrideStore
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logrus.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opt)
		ctx := context.Background()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("Redis unreachable, running without cache: %v", err)
		} else {
			defer redisClient.Close()
			redisCache := services.NewCacheService(redisClient)
			cacheService = redisCache
			overrideStore = services.NewRedisOverrideStore(redisCache, logger)
		}
	}
	if overrideStore == nil {
		overrideStore = services.NewMemoryOverrideStore()
	}

	// Data provider
	var fetcher services.SnapshotFetcher
	if cfg.RobotEventsBaseURL != "" {
		fetcher = providers.NewRobotEventsClientWithBaseURL(cfg.RobotEventsBaseURL, cfg.RobotEventsAPIKey, logger)
	} else {
		fetcher = providers.NewRobotEventsClient(cfg.RobotEventsAPIKey, logger)
	}

	// Classifier: remote model server if configured, logistic fallback if not
	var classifier engine.Classifier
	if cfg.ClassifierURL != "" {
		classifier = services.NewHTTPClassifier(cfg.ClassifierURL, logger)
	} else {
		classifier = services.NewLogisticClassifier()
	}

	params := engine.DefaultParams()
	if cfg.FraudThresholdTop5 > 0 {
		params.FraudThresholdTop5 = cfg.FraudThresholdTop5
	}
	if cfg.FraudThreshold > 0 {
		params.FraudThreshold = cfg.FraudThreshold
	}
	if cfg.SleeperThreshold > 0 {
		params.SleeperThreshold = cfg.SleeperThreshold
	}
	if cfg.ManualBlendWeight > 0 {
		params.OverrideManualWeight = cfg.ManualBlendWeight
		params.OverrideAlgoWeight = 1 - cfg.ManualBlendWeight
	}

	analyzer := engine.NewAnalyzer(classifier, params, logger)
	analysisService := services.NewAnalysisService(fetcher, cacheService, overrideStore, analyzer, logger, cfg.CacheTTL)

	refresher := services.NewRefresherService(analysisService, logger, cfg.RefreshInterval)
	if err := refresher.Start(); err != nil {
		logger.Errorf("Failed to start refresher: %v", err)
	}
	defer refresher.Stop()

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.CorsOrigins))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC(),
		})
	})

	// Setup API routes under /api/v1
	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, analysisService, overrideStore, refresher)

	// Setup server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logrus.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

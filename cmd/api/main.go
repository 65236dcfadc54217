package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/campuspulse/feedback-service/internal/adapters/cache"
	"github.com/campuspulse/feedback-service/internal/adapters/events"
	"github.com/campuspulse/feedback-service/internal/adapters/store"
	"github.com/campuspulse/feedback-service/internal/api/handlers"
	"github.com/campuspulse/feedback-service/internal/api/routes"
	"github.com/campuspulse/feedback-service/internal/application/services"
	"github.com/campuspulse/feedback-service/internal/domain/providers"
	"github.com/campuspulse/feedback-service/internal/infrastructure/clients/redis"
	"github.com/campuspulse/feedback-service/internal/infrastructure/observability"
	"github.com/campuspulse/feedback-service/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to initialize store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error().Err(err).Msg("error closing store")
		}
	}()

	// Redis backs the analytics cache, the submission guard and the event
	// bus. Without it every one of those falls back to in-process behavior.
	var (
		cacheProvider            providers.CacheProvider
		eventBus                 providers.EventBus
		cacheInvalidationService *services.CacheInvalidationService
	)
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, continuing without cache and events")
		} else {
			defer redisClient.Close()
			cacheProvider = cache.NewRedisAdapter(redisClient)
			eventBus = events.NewRedisEventBus(redisClient)
			log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis initialized")
		}
	}

	// Initialize services
	feedbackService := services.NewFeedbackService(st.Feedback, st.Students, cfg.Feedback.GuardedResponses)
	feedbackService.SetMetrics(metrics)
	if eventBus != nil {
		feedbackService.SetEventBus(eventBus)
	}

	analyticsService := services.NewAnalyticsService(st.Feedback, cacheProvider, cfg.Feedback.AnalyticsTTL)
	analyticsService.SetMetrics(metrics)
	if eventBus != nil {
		cacheInvalidationService = services.NewCacheInvalidationService(analyticsService, eventBus)
		if err := cacheInvalidationService.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to start cache invalidation")
		}
	}

	studentService := services.NewStudentService(st.Students)

	// Initialize handlers
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService, cacheProvider, handlers.GuardConfig{
		RateLimit:   cfg.Feedback.RateLimit,
		RateWindow:  cfg.Feedback.RateWindow,
		DedupWindow: cfg.Feedback.DedupWindow,
	})
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, feedbackService)
	studentHandler := handlers.NewStudentHandler(studentService)

	var streamHandler *handlers.StreamHandler
	if eventBus != nil {
		streamHandler = handlers.NewStreamHandler(eventBus)
	}

	router := routes.NewRouter(
		feedbackHandler,
		analyticsHandler,
		studentHandler,
		streamHandler,
		st.Students,
		cfg.Server.AllowedOrigins,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Str("store", cfg.Store.Driver).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}
	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}

	log.Info().Msg("server stopped")
}

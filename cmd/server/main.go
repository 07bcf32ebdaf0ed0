package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/steam-tracker/internal/config"
	"github.com/steam-tracker/internal/handler"
	"github.com/steam-tracker/internal/kafka"
	"github.com/steam-tracker/internal/postgres"
	"github.com/steam-tracker/internal/redis"
	"github.com/steam-tracker/internal/search"
	"github.com/steam-tracker/internal/service"
	"github.com/steam-tracker/internal/steam"
	"github.com/steam-tracker/internal/websocket"
	"github.com/steam-tracker/internal/worker"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warn("failed to load config file, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Lookup event sinks. Each stays a nil interface when its backend is off.
	var (
		eventStore     service.EventStore
		eventReader    service.EventReader
		trendingWriter service.TrendingCounter
		trendingReader service.TrendingReader
		repo           *postgres.Repository
	)

	wsHub := websocket.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub initialized")

	readiness := map[string]handler.Pinger{}

	if cfg.Redis.Enabled {
		logger.Info("connecting to Redis", "addr", cfg.Redis.Addr)
		trending, err := redis.NewTrendingStore(&cfg.Redis, logger)
		if err != nil {
			logger.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer trending.Close()
		trendingWriter, trendingReader = trending, trending
		readiness["redis"] = trending
		logger.Info("connected to Redis")
	}

	if cfg.Postgres.Enabled {
		logger.Info("connecting to PostgreSQL", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
		repo, err = postgres.NewRepository(&cfg.Postgres, logger)
		if err != nil {
			logger.Error("failed to connect to PostgreSQL", "error", err)
			os.Exit(1)
		}
		defer repo.Close()

		if err := repo.RunMigrations(ctx); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		eventStore, eventReader = repo, repo
		readiness["postgres"] = repo
		logger.Info("connected to PostgreSQL")
	}

	recorder := service.NewRecorder(eventStore, trendingWriter, wsHub, logger)
	var publisher service.EventPublisher = recorder

	var (
		kafkaProducer *kafka.Producer
		kafkaConsumer *kafka.Consumer
	)
	if cfg.Kafka.Enabled {
		logger.Info("initializing Kafka",
			"brokers", cfg.Kafka.Brokers,
			"topic", cfg.Kafka.Topic,
		)
		kafkaProducer, err = kafka.NewProducer(&cfg.Kafka, logger)
		if err != nil {
			logger.Warn("failed to create Kafka producer, recording lookups directly", "error", err)
		} else {
			publisher = kafkaProducer

			kafkaConsumer, err = kafka.NewConsumer(&cfg.Kafka, recorder, logger)
			if err != nil {
				logger.Warn("failed to create Kafka consumer, lookups will not be recorded", "error", err)
			} else if err := kafkaConsumer.Start(); err != nil {
				logger.Warn("failed to start Kafka consumer, lookups will not be recorded", "error", err)
				kafkaConsumer = nil
			} else {
				logger.Info("Kafka consumer started successfully")
			}
		}
	}

	var retention *worker.RetentionWorker
	if cfg.Retention.Enabled && repo != nil {
		retention = worker.NewRetentionWorker(repo, &cfg.Retention, logger)
		retention.RunOnce(ctx)
		if err := retention.Start(ctx); err != nil {
			logger.Error("failed to start retention worker", "error", err)
			os.Exit(1)
		}
	}

	steamClient := steam.NewClient(&cfg.Steam, logger)
	if !cfg.Guide.Configured() {
		logger.Warn("guide search credentials missing, guide routes will fail")
	}

	tracker := service.NewTracker(
		service.NewIdentityResolver(steamClient, logger),
		service.NewLibraryLister(steamClient, &cfg.Steam, logger),
		service.NewAchievementAggregator(steamClient, &cfg.Steam, logger),
		service.NewProfileService(steamClient, logger),
		service.NewGuideLocator(search.NewClient(&cfg.Guide, logger), &cfg.Guide, logger),
		publisher,
		logger,
	)
	stats := service.NewStatsService(trendingReader, eventReader, &cfg.Trending)

	httpHandler := handler.NewHandler(tracker, stats, wsHub, cfg.Server.AllowedOrigins, logger)
	for name, p := range readiness {
		httpHandler.AddReadinessCheck(name, p)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpHandler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	wsHub.Stop()

	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			logger.Error("failed to close Kafka producer", "error", err)
		}
	}
	if kafkaConsumer != nil {
		if err := kafkaConsumer.Stop(); err != nil {
			logger.Error("failed to stop Kafka consumer", "error", err)
		}
	}

	if retention != nil {
		if err := retention.Stop(); err != nil {
			logger.Error("failed to stop retention worker", "error", err)
		}
	}

	logger.Info("server stopped")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seller-insight/config"
	"seller-insight/internal/api"
	"seller-insight/internal/broker"
	"seller-insight/internal/imaging"
	"seller-insight/internal/redisclient"
	"seller-insight/internal/service"
	"seller-insight/internal/store"
	"seller-insight/internal/upstream"
	"seller-insight/internal/util"
	"seller-insight/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "seller-insight"

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, serviceName); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting seller insight service",
		zap.String("env", cfg.Server.Env),
		zap.String("upstream", cfg.Upstream.BaseURL))

	tp, err := util.InitTracer(serviceName, cfg.Observ.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("Error shutting down tracer", zap.Error(err))
		}
	}()

	deps := service.Deps{
		Fetcher: upstream.NewClient(upstream.Options{
			BaseURL:           cfg.Upstream.BaseURL,
			Timeout:           cfg.Upstream.Timeout,
			RequestsPerSecond: cfg.Upstream.RequestsPerSecond,
		}),
		Images:    imaging.NewInspector(cfg.Upstream.ImageTimeout),
		Analytics: service.StaticAnalytics{},
		OrderQuery: service.OrderQuery{
			Page:       1,
			Size:       50,
			CategoryID: cfg.Orders.CategoryID,
			SearchText: cfg.Orders.SearchText,
		},
		ReportRange:  cfg.Upstream.ReportRange,
		EventTimeout: cfg.Kafka.PublishTimeout,
	}
	apiOpts := api.Options{
		CORSOrigins:       cfg.Server.CORSOrigins,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Readiness:         map[string]api.ReadinessCheck{},
	}

	if cfg.Database.URL != "" {
		db, err := store.NewStore(cfg.Database.URL)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := db.EnsureSchema(context.Background()); err != nil {
			logger.Fatal("Failed to prepare database", zap.Error(err))
		}
		deps.Runs = db
		apiOpts.Readiness["postgres"] = db.Ping
		logger.Info("Database connected, insight run audit enabled")
	}

	var redisClient *redisclient.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()

		apiOpts.Limiter = redisClient
		apiOpts.Readiness["redis"] = redisClient.Ping
		logger.Info("Redis connected, rate limiting enabled",
			zap.Int("per_minute", cfg.RateLimit.RequestsPerMinute))
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var alertWorker *worker.AlertWorker
	if len(cfg.Kafka.Brokers) > 0 {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicInsight)
		defer producer.Close()
		deps.Events = broker.NewEventPublisher(producer)
		logger.Info("Kafka producer initialized", zap.String("topic", cfg.Kafka.TopicInsight))

		if cfg.Kafka.ConsumerGroup != "" {
			consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicInsight, cfg.Kafka.ConsumerGroup)
			var dedup worker.Deduper
			if redisClient != nil {
				dedup = redisClient
			}
			alertWorker = worker.NewAlertWorker(consumer, dedup)
			go func() {
				if err := alertWorker.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("Alert worker error", zap.Error(err))
				}
			}()
		}
	}

	insightService := service.NewInsightService(deps)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(insightService, apiOpts)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if alertWorker != nil {
		_ = alertWorker.Stop()
	}

	logger.Info("Server exited")
}

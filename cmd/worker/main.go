package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/warbler-social/warbler/internal/config"
	"github.com/warbler-social/warbler/internal/repository"
	"github.com/warbler-social/warbler/internal/services"
	"github.com/warbler-social/warbler/internal/workers"
	"github.com/warbler-social/warbler/pkg/cache"
	"github.com/warbler-social/warbler/pkg/logger"
	"github.com/warbler-social/warbler/pkg/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.New()
	logger.Info("Starting Warbler timeline worker...")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	consumer := queue.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.ContentEvents, "timeline-worker-group")
	defer consumer.Close()

	messageRepo := repository.NewMessageRepository(db.DB)
	followRepo := repository.NewFollowRepository(db.DB)
	timelineService := services.NewTimelineService(messageRepo, followRepo, redisClient, &cfg.Timeline, logger)

	worker := workers.NewTimelineWorker(timelineService, consumer, logger)

	go func() {
		if err := worker.Start(ctx); err != nil && ctx.Err() == nil {
			logger.WithError(err).Error("Timeline worker stopped with error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()

	if err := worker.Stop(); err != nil {
		logger.WithError(err).Error("Failed to stop timeline worker")
	}

	logger.Info("Worker exited")
}

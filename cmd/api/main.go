package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/warbler-social/warbler/internal/config"
	"github.com/warbler-social/warbler/internal/handlers"
	"github.com/warbler-social/warbler/internal/middleware"
	"github.com/warbler-social/warbler/internal/repository"
	"github.com/warbler-social/warbler/internal/services"
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
	logger.Info("Starting Warbler API server...")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	userEventsProducer := queue.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.UserEvents)
	defer userEventsProducer.Close()

	contentEventsProducer := queue.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.ContentEvents)
	defer contentEventsProducer.Close()

	userRepo := repository.NewUserRepository(db.DB)
	followRepo := repository.NewFollowRepository(db.DB)
	messageRepo := repository.NewMessageRepository(db.DB)
	likeRepo := repository.NewLikeRepository(db.DB)

	identityService := services.NewIdentityService(db.DB, userRepo, userEventsProducer, logger)
	socialService := services.NewSocialGraphService(db.DB, userRepo, followRepo, contentEventsProducer, logger)
	contentService := services.NewContentService(db.DB, messageRepo, likeRepo, contentEventsProducer, logger)
	engagementService := services.NewEngagementService(db.DB, messageRepo, likeRepo, contentEventsProducer, logger)
	timelineService := services.NewTimelineService(messageRepo, followRepo, redisClient, &cfg.Timeline, logger)

	jwtCfg := &middleware.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpireTime: cfg.JWT.ExpireTime,
	}

	userHandler := handlers.NewUserHandler(identityService, socialService, jwtCfg)
	messageHandler := handlers.NewMessageHandler(contentService, engagementService, timelineService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.NewRouter(userHandler, messageHandler, userRepo, jwtCfg)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func init() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.MkdirAll("configs", 0755); err != nil {
			log.Printf("Failed to create configs directory: %v", err)
			return
		}
		if err := createDefaultConfig(configPath); err != nil {
			log.Printf("Failed to create default config: %v", err)
		}
	}
}

func createDefaultConfig(path string) error {
	defaultConfig := `server:
  port: ":8080"
  mode: "debug"
  read_timeout: 30s
  write_timeout: 30s

database:
  host: "localhost"
  port: 5432
  user: "warbler"
  password: "warbler"
  dbname: "warbler"
  sslmode: "disable"
  max_open_conns: 100
  max_idle_conns: 10

redis:
  host: "localhost"
  port: 6379
  password: ""
  db: 0
  pool_size: 100
  min_idle_conns: 10

kafka:
  brokers:
    - "localhost:9092"
  topics:
    user_events: "user-events"
    content_events: "content-events"

jwt:
  secret: "change-me-in-production"
  expire_time: 24h

timeline:
  cache_ttl: 1h
  max_size: 200`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}

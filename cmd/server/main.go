package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-api/internal/config"
	apihttp "storefront-api/internal/controllers/http"
	"storefront-api/internal/infra"
	"storefront-api/internal/infra/auth"
	"storefront-api/internal/infra/database"
	"storefront-api/internal/infra/kafka"
	"storefront-api/internal/infra/rabbitmq"
	"storefront-api/internal/infra/tracing"
	"storefront-api/internal/logger"
	"storefront-api/internal/repository/gormrepo"
	"storefront-api/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const serviceName = "storefront-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	shutdownTracing, err := tracing.Init(serviceName, cfg.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	store := gormrepo.NewStore(db)

	publisher, err := newPublisher(cfg.Events, logger)
	if err != nil {
		logger.Fatal("Failed to initialize event publisher", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           0,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: 5,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	catalog := services.NewCatalogService(store, logger)
	carts := services.NewCartService(store, catalog, logger)
	orders := services.NewOrderService(store, catalog, publisher, logger)
	users := services.NewUserService(store, tokens, logger)

	ctx := context.Background()
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unavailable, product cache disabled", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
	} else {
		catalog.SetRedisClient(redisClient, cfg.ProductCacheTTL)
		go func() {
			if err := catalog.WarmupProductCache(ctx, cfg.WarmupProducts); err != nil {
				logger.Warn("Failed to warm up cache", zap.Error(err))
				return
			}
			logger.Info("Cache warmed up successfully", zap.Int("products", len(cfg.WarmupProducts)))
		}()
	}
	cancel()

	if err := users.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logger.Fatal("Failed to seed admin account", zap.Error(err))
	}

	handler := apihttp.NewHandler(orders, carts, catalog, users, tokens, logger)
	handler.SetHealthCheck(func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})

	if cfg.Logger.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))
	router.Use(apihttp.RequestIDMiddleware())
	router.Use(apihttp.LoggerMiddleware(logger))
	router.Use(apihttp.MetricsMiddleware())
	router.Use(apihttp.TimeoutMiddleware(cfg.RequestTimeout))

	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	logger.Info("Storefront API started",
		zap.String("port", cfg.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("events_broker", cfg.Events.Broker),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	orders.WaitForEvents()
	if err := publisher.Close(); err != nil {
		logger.Warn("Failed to close event publisher", zap.Error(err))
	}
	if err := redisClient.Close(); err != nil {
		logger.Warn("Failed to close redis client", zap.Error(err))
	}
	if err := database.Close(db); err != nil {
		logger.Warn("Failed to close database", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("Failed to flush traces", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newPublisher(cfg config.Events, logger *zap.Logger) (infra.EventPublisher, error) {
	switch cfg.Broker {
	case "rabbitmq":
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, logger)
		if err != nil {
			return nil, err
		}
		return publisher, nil
	case "kafka":
		producer, err := kafka.NewSyncProducer(cfg.KafkaBrokers)
		if err != nil {
			return nil, err
		}
		return kafka.NewProducer(producer, cfg.KafkaTopic, logger), nil
	default:
		return infra.NopPublisher{}, nil
	}
}

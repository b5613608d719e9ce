package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-catalog-service/config"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/clock"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/database/postgres"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/metrics"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/middleware"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/search"
	"github.com/fekuna/omnipos-catalog-service/internal/reference"
	refH "github.com/fekuna/omnipos-catalog-service/internal/reference/handler"
	"github.com/fekuna/omnipos-catalog-service/internal/storage"

	catalogCache "github.com/fekuna/omnipos-catalog-service/internal/catalog/cache"
	catalogH "github.com/fekuna/omnipos-catalog-service/internal/catalog/handler"
	catalogSearch "github.com/fekuna/omnipos-catalog-service/internal/catalog/search"
	catalogUCPkg "github.com/fekuna/omnipos-catalog-service/internal/catalog/usecase"

	catH "github.com/fekuna/omnipos-catalog-service/internal/category/handler"
	catUCPkg "github.com/fekuna/omnipos-catalog-service/internal/category/usecase"

	invEvent "github.com/fekuna/omnipos-catalog-service/internal/inventory/event"
	invH "github.com/fekuna/omnipos-catalog-service/internal/inventory/handler"
	invListenerPkg "github.com/fekuna/omnipos-catalog-service/internal/inventory/listener"
	invUCPkg "github.com/fekuna/omnipos-catalog-service/internal/inventory/usecase"

	ticketH "github.com/fekuna/omnipos-catalog-service/internal/ticket/handler"
	ticketUCPkg "github.com/fekuna/omnipos-catalog-service/internal/ticket/usecase"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(cfg.Metrics.Namespace, registry)

	// 4. Connect to Database
	var db *sqlx.DB
	if cfg.Storage.Driver == storage.DriverPostgres {
		var err error
		db, err = postgres.NewPostgres(&postgres.Config{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			DBName:          cfg.Postgres.DBName,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to database", zap.Error(err))
		}
		defer db.Close()
		appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))
	}

	// 5. Initialize Repositories
	repos, err := storage.New(cfg.Storage.Driver, db)
	if err != nil {
		appLogger.Fatal("Could not initialize storage", zap.Error(err))
	}
	appLogger.Info("Storage ready", zap.String("driver", cfg.Storage.Driver))

	// 6. Initialize Redis
	catalogOpts := []catalogUCPkg.Option{catalogUCPkg.WithMetrics(appMetrics)}
	var invalidator inventory.SnapshotInvalidator
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Redis, catalog reads go straight to storage", zap.Error(err))
		} else {
			defer redisClient.Close()
			entryCache := catalogCache.NewEntryCache(redisClient, cfg.Redis.TTL, appMetrics, appLogger)
			catalogOpts = append(catalogOpts, catalogUCPkg.WithCache(entryCache))
			invalidator = entryCache
			appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// 7. Initialize Elasticsearch
	if cfg.Elastic.Enabled {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch, search falls back to storage", zap.Error(err))
		} else {
			index := catalogSearch.NewEntryIndex(esClient)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := index.EnsureIndex(ctx); err != nil {
				appLogger.Warn("Could not create catalog index", zap.Error(err))
			}
			cancel()
			catalogOpts = append(catalogOpts, catalogUCPkg.WithIndex(index))
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 8. Initialize Kafka
	var publisher inventory.EventPublisher
	var kafkaConsumer *broker.KafkaConsumer
	if cfg.Kafka.Enabled {
		kafkaProducer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.StockTopic,
		})
		defer kafkaProducer.Close()
		publisher = invEvent.NewKafkaPublisher(kafkaProducer)

		kafkaConsumer = broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.OrderTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer kafkaConsumer.Close()
		appLogger.Info("Connected to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("order_topic", cfg.Kafka.OrderTopic),
			zap.String("stock_topic", cfg.Kafka.StockTopic),
		)
	}

	// 9. Initialize UseCases
	clk := clock.New()
	refs := reference.NewValidator(map[model.ReferenceKind]reference.Source{
		model.ReferenceKindCategory:     repos.Categories,
		model.ReferenceKindCatalogEntry: repos.Catalog,
	})

	catUC := catUCPkg.NewCategoryUseCase(repos.Categories, clk, appMetrics, appLogger)
	catalogUC := catalogUCPkg.NewCatalogUseCase(repos.Catalog, refs, clk, appLogger, catalogOpts...)
	invUC := invUCPkg.NewInventoryUseCase(repos.Inventory, invalidator, publisher, clk, appMetrics, appLogger)
	ticketUC := ticketUCPkg.NewTicketUseCase(repos.Tickets, invUC, clk, appMetrics, appLogger)

	// 10. Initialize Listeners
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if kafkaConsumer != nil {
		invListener := invListenerPkg.NewInventoryListener(kafkaConsumer, invUC, appMetrics, appLogger)
		go invListener.Start(ctx)
	}

	// 11. Initialize Handlers
	catHandler := catH.NewCategoryHandler(catUC, appLogger)
	catalogHandler := catalogH.NewCatalogHandler(catalogUC, clk, appLogger)
	invHandler := invH.NewInventoryHandler(invUC, appLogger)
	ticketHandler := ticketH.NewTicketHandler(ticketUC, appLogger)
	refHandler := refH.NewReferenceHandler(refs, appLogger)

	// 12. Start gRPC Server
	port := withColon(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.RecoveryInterceptor(appLogger),
			middleware.ContextInterceptor(),
			middleware.LoggingInterceptor(appLogger, appMetrics),
		),
	)

	// Register Services
	catHandler.Register(grpcServer)
	catalogHandler.Register(grpcServer)
	invHandler.Register(grpcServer)
	ticketHandler.Register(grpcServer)
	refHandler.Register(grpcServer)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	// Register Reflection
	reflection.Register(grpcServer)

	appLogger.Info("Starting gRPC server", zap.String("port", port))

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// 13. Start ops HTTP server
	ops := echo.New()
	ops.HideBanner = true
	ops.HidePort = true
	ops.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	ops.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	httpPort := withColon(cfg.Server.HTTPPort)
	go func() {
		appLogger.Info("Starting ops HTTP server", zap.String("port", httpPort))
		if err := ops.Start(httpPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve ops", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := ops.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("ops server shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}

func withColon(port string) string {
	if !strings.HasPrefix(port, ":") {
		return ":" + port
	}
	return port
}

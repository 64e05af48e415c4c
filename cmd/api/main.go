package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/classified-extractor/app/config"
	"github.com/classified-extractor/app/controllers"
	"github.com/classified-extractor/app/services"
	"github.com/classified-extractor/routes"
)

func main() {
	loadConfig()

	logger := initLogger()
	defer logger.Sync()

	logger.Info("Starting Classified Ad Extractor")

	cfg, err := config.LoadOrDefault(viper.GetString("extractor.config"))
	if err != nil {
		logger.Fatal("Failed to load extractor config", zap.Error(err))
	}

	ref, err := services.LoadReference(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to load reference tables", zap.Error(err))
	}
	tn, err := services.BuildNormalizer(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build normalizer", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache, closeCache, err := initCache(ctx, logger)
	if err != nil {
		logger.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer closeCache()

	extractService, err := services.NewExtractService(ref, tn, cfg, cache, logger)
	if err != nil {
		logger.Fatal("Failed to build extract service", zap.Error(err))
	}
	adminService := services.NewAdminService(extractService, logger)

	extractController := controllers.NewExtractController(extractService, logger)
	adminController := controllers.NewAdminController(adminService, logger)

	gin.SetMode(viper.GetString("server.mode"))
	router := gin.New()
	if gin.Mode() == gin.DebugMode {
		router.Use(gin.Logger())
	}
	routes.SetupAllRoutes(router, extractController, adminController)

	srv := &http.Server{
		Addr:              ":" + viper.GetString("server.port"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}

// loadConfig reads config/app.yaml; env vars such as CACHE_BACKEND or
// REDIS_URL override it.
func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", gin.ReleaseMode)
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.l1_size", 1000)
	viper.SetDefault("redis.url", "redis://localhost:6379/0")
	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "classified_extractor")
	viper.SetDefault("extractor.config", "config/extractor.yaml")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Cannot read config file: %v", err)
	}
}

// initLogger builds a production logger when APP_ENV=production and a
// development one otherwise.
func initLogger() *zap.Logger {
	var zc zap.Config
	if os.Getenv("APP_ENV") == "production" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	logger, err := zc.Build()
	if err != nil {
		log.Fatal("Cannot initialize logger:", err)
	}
	return logger
}

// initCache builds the configured cache backend. The returned func releases
// its connections.
func initCache(ctx context.Context, logger *zap.Logger) (services.ICacheService, func(), error) {
	ttl := viper.GetDuration("cache.ttl")
	l1Size := viper.GetInt("cache.l1_size")
	noop := func() {}

	switch backend := viper.GetString("cache.backend"); backend {
	case "none", "":
		logger.Info("Cache disabled")
		return nil, noop, nil

	case "memory":
		mc := services.NewCacheService(ttl)
		mc.StartCleanupWorker(ctx, 10*time.Minute)
		return mc, noop, nil

	case "redis":
		rc, err := services.NewRedisCacheService(ctx, viper.GetString("redis.url"), ttl, logger)
		if err != nil {
			return nil, noop, err
		}
		return rc, func() { _ = rc.Close() }, nil

	case "mongo", "hybrid":
		client, err := initMongoDB(ctx, logger)
		if err != nil {
			return nil, noop, err
		}
		disconnect := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Error("Error disconnecting MongoDB", zap.Error(err))
			}
		}
		mc, err := services.NewMongoCacheService(ctx, client.Database(viper.GetString("mongo.database")), l1Size, logger)
		if err != nil {
			disconnect()
			return nil, noop, err
		}
		if err := mc.WarmUp(ctx, l1Size/2); err != nil {
			logger.Warn("Failed to warm up cache", zap.Error(err))
		}
		if backend == "mongo" {
			return mc, disconnect, nil
		}

		rc, err := services.NewRedisCacheService(ctx, viper.GetString("redis.url"), ttl, logger)
		if err != nil {
			disconnect()
			return nil, noop, err
		}
		hc := services.NewHybridCacheService(rc, mc, logger)
		return hc, func() {
			_ = hc.Close()
			disconnect()
		}, nil

	default:
		return nil, noop, fmt.Errorf("unknown cache backend %q", backend)
	}
}

func initMongoDB(ctx context.Context, logger *zap.Logger) (*mongo.Client, error) {
	uri := viper.GetString("mongo.uri")
	logger.Info("Connecting to MongoDB", zap.String("database", viper.GetString("mongo.database")))

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

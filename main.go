package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"inventario/internal/config"
	"inventario/internal/database"
	"inventario/internal/repositories"
	"inventario/internal/services"
	"inventario/pkg/rabbitmq"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	setupLogger(cfg)

	productService, cleanup, err := buildProductService(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize dependencies")
	}
	defer cleanup()

	if cfg.SeedSampleData {
		created, err := productService.SeedSampleProducts(context.Background())
		if err != nil {
			logrus.WithError(err).Fatal("Failed to seed sample products")
		}
		logrus.WithField("created", created).Info("Sample products seeded")
	}

	app, err := NewApp(productService, cfg.SessionExpiration)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create app")
	}

	go func() {
		logrus.Infof("Starting server on port %s", cfg.AppPort)
		if err := app.Listen(cfg.AppPort); err != nil {
			logrus.WithError(err).Fatal("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		logrus.WithError(err).Error("Error during Fiber shutdown")
	}
	logrus.Info("Server gracefully stopped")
}

// setupLogger configures logrus: text in development, JSON otherwise.
func setupLogger(cfg *config.Config) {
	logrus.SetOutput(os.Stdout)
	if cfg.IsDevelopment() {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithError(err).Warn("Invalid LOG_LEVEL, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// buildProductService wires the repository, the optional Redis cache and the
// optional RabbitMQ publisher. cleanup releases whatever was opened.
func buildProductService(cfg *config.Config) (*services.ProductService, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logrus.WithError(err).Warn("Error releasing resource")
			}
		}
	}

	productRepo, err := newProductRepository(cfg, &closers)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, mqClient.Close)
		publisher = mqClient

		if err := mqClient.ConsumeProductEvents(rabbitmq.HandleProductMessage); err != nil {
			logrus.WithError(err).Warn("Failed to start product event consumer")
		}
	}

	return services.NewProductService(productRepo, publisher), cleanup, nil
}

func newProductRepository(cfg *config.Config, closers *[]func() error) (repositories.ProductRepository, error) {
	var productRepo repositories.ProductRepository
	if cfg.DBDriver == "memory" {
		productRepo = repositories.NewMemoryProductRepository()
	} else {
		db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, cfg.IsDevelopment())
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, sqlDB.Close)
		productRepo = repositories.NewGORMProductRepository(db)
	}

	if cfg.RedisURL == "" {
		return productRepo, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	*closers = append(*closers, rdb.Close)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logrus.WithField("ttl", cfg.CacheTTL).Info("Redis product cache enabled")
	return repositories.NewCachedProductRepository(productRepo, rdb, cfg.CacheTTL), nil
}

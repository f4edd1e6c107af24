package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/coronavstech/companies/internal/company/auth"
	"github.com/coronavstech/companies/internal/company/cache"
	"github.com/coronavstech/companies/internal/company/config"
	"github.com/coronavstech/companies/internal/company/controller"
	gorm "github.com/coronavstech/companies/internal/company/db"
	"github.com/coronavstech/companies/internal/company/events"
	"github.com/coronavstech/companies/internal/company/handlers"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
)

type eventProducer interface {
	controller.EventProducer
	Close()
}

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// The logger depends on the config; fall back to a default one.
		zap.Must(zap.NewProduction()).Fatal("failed to load config", zap.Error(err))
	}

	logger := initLogger(cfg)
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	repo, err := connectDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer repo.Close()

	producer := initProducer(cfg, logger)
	defer producer.Close()

	var listCache controller.ListCache
	if cfg.RedisAddr != "" {
		client, err := cache.Connect(context.Background(), cache.Options{
			Addr:       cfg.RedisAddr,
			Password:   cfg.RedisPassword,
			DB:         cfg.RedisDB,
			MaxRetries: cfg.DBMaxRetries,
		}, logger.Named("redis"))
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		listCache = cache.NewListCache(client, cfg.CacheTTL)
	}

	companySvc := controller.NewCompanyService(repo, producer, listCache, logger)

	// Initialize auth interceptor
	authInterceptor := auth.NewAuthInterceptor(cfg.JWTSecret)
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is empty, write operations are not authenticated")
	}

	// Create server
	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger, grpc.UnaryInterceptor(authInterceptor.Unary()))
	server.RegisterGRPCHandler(handlers.NewCompanyHandler(companySvc, logger))
	server.RegisterHTTPHandler(handlers.NewRouter(
		handlers.NewHTTPHandler(companySvc, repo, logger),
		handlers.RouterOptions{
			JWTSecret:   cfg.JWTSecret,
			RateLimit:   cfg.RateLimit,
			Development: cfg.Development,
		},
	))

	// Start servers
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	waitForShutdown(server, errCh, cfg.ShutdownTimeout, logger)
}

// initLogger builds a production JSON logger, or a console one in development.
func initLogger(cfg *config.Config) *zap.Logger {
	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return zap.NewExample()
	}
	return logger
}

// connectDatabase opens the repository, retrying while the database starts up.
func connectDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.Repository, error) {
	dbConf := &gorm.Config{
		Driver:     cfg.DBDriver,
		Host:       cfg.DBHost,
		Port:       cfg.DBPort,
		User:       cfg.DBUser,
		Password:   cfg.DBPassword,
		DBName:     cfg.DBName,
		SSLMode:    cfg.DBSSLMode,
		SQLitePath: cfg.SQLitePath,
	}

	var repo *gorm.Repository
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), cfg.DBMaxRetries)
	err := backoff.RetryNotify(func() error {
		var err error
		repo, err = gorm.NewRepository(dbConf)
		return err
	}, policy, func(err error, wait time.Duration) {
		logger.Warn("database connection failed, retrying",
			zap.String("driver", cfg.DBDriver),
			zap.Duration("next_retry_in", wait),
			zap.Error(err),
		)
	})
	return repo, err
}

// initProducer returns a Kafka producer, or a no-op one without brokers.
func initProducer(cfg *config.Config, logger *zap.Logger) eventProducer {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("no Kafka brokers configured, change events are disabled")
		return events.NewNopProducer(logger)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := events.EnsureTopic(ctx, cfg.KafkaBrokers, cfg.Topic, 3); err != nil {
		logger.Warn("failed to create topic (may already exist)", zap.Error(err))
	}
	return events.NewProducer(cfg.KafkaBrokers, cfg.Topic, logger)
}

// waitForShutdown blocks until an interrupt, SIGTERM or a server failure,
// then shuts down servers.
func waitForShutdown(server *handlers.Server, errCh <-chan error, timeout time.Duration, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("Received signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	server.Stop(ctx)
	logger.Info("Servers stopped properly")
}

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

	"github.com/woolies-greener/backend/config"
	"github.com/woolies-greener/backend/internal/currency"
	httpDelivery "github.com/woolies-greener/backend/internal/delivery/http"
	"github.com/woolies-greener/backend/internal/infrastructure/cache"
	"github.com/woolies-greener/backend/internal/infrastructure/postgres"
	"github.com/woolies-greener/backend/internal/infrastructure/woolworths"
	"github.com/woolies-greener/backend/internal/logger"
	"github.com/woolies-greener/backend/internal/usecase"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Log.Sync() }()

	if err := run(cfg); err != nil {
		logger.Log.Fatal("Server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Log.Info("Starting Woolies Greener Backend v1.0.0",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	// Initialize infrastructure dependencies
	db, err := postgres.Open(ctx, postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Name:            cfg.Database.Name,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		ConnectAttempts: cfg.Database.ConnectAttempts,
		RetryDelay:      cfg.Database.RetryDelay,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := postgres.Close(db); err != nil {
			logger.Log.Warn("Failed to close database", zap.Error(err))
		}
	}()

	productRepo := postgres.NewProductRepository(db)
	basketRepo := postgres.NewBasketRepository(db)

	memoryCache := cache.NewMemoryCache(cfg.Cache.CleanupInterval)
	defer memoryCache.Close()
	logger.Log.Info("Cache configured", zap.Duration("ttl", cfg.Cache.TTL))

	woolworthsClient := woolworths.NewClient(woolworths.ClientConfig{
		AUBaseURL:     cfg.Woolworths.AUBaseURL,
		NZBaseURL:     cfg.Woolworths.NZBaseURL,
		UserAgent:     cfg.Woolworths.UserAgent,
		RequestedWith: cfg.Woolworths.RequestedWith,
		CookiePrefix:  cfg.Woolworths.CookiePrefix,
		NZPageSize:    cfg.Woolworths.NZPageSize,
		AUPageSize:    cfg.Woolworths.AUPageSize,
		Timeout:       cfg.Woolworths.Timeout,
	})

	// Enable debug mode in development or when asked for
	if cfg.Woolworths.Debug || cfg.Server.Environment == "development" {
		woolworthsClient.SetDebug(true)
		logger.Log.Info("Woolworths client debug mode enabled")
	}

	converter := currency.NewConverter(cfg.Currency.NZDToAUDRate)
	logger.Log.Info("Currency configured", zap.Float64("nzd_to_aud", converter.Rate()))

	// Initialize usecase layer
	matchingService := usecase.NewMatchingService(productRepo, basketRepo, woolworthsClient, memoryCache)
	productService := usecase.NewProductService(productRepo, basketRepo, memoryCache)
	basketService := usecase.NewBasketService(basketRepo, memoryCache)
	comparisonService := usecase.NewComparisonService(
		productRepo,
		basketRepo,
		memoryCache,
		converter,
		usecase.ComparisonServiceConfig{CacheTTL: cfg.Cache.TTL},
	)

	if cfg.Database.SeedBaskets {
		created, err := basketService.SeedDefaults(ctx)
		if err != nil {
			return fmt.Errorf("seed baskets: %w", err)
		}
		logger.Log.Info("Default baskets seeded", zap.Int("created", created))
	}

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(matchingService, productService, basketService, comparisonService, converter)
	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}

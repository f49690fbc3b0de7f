package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"finboard/internal/cache"
	"finboard/internal/config"
	"finboard/internal/database"
	"finboard/internal/logger"
	"finboard/internal/market"
	"finboard/internal/metrics"
	"finboard/internal/provider"
	"finboard/internal/search"
	"finboard/internal/server"
	"finboard/internal/services"
	"finboard/internal/validator"
)

// @title           Finboard API
// @version         1.0
// @description     Stock quotes, dividend-adjusted yields, favorites and portfolio valuation.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Database
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	db := dbManager.DB()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Result cache
	store, err := newStore(ctx, appConfig)
	if err != nil {
		return err
	}

	// Market data
	yahoo, err := provider.NewYahoo(provider.YahooOptions{
		BaseURL:         appConfig.YahooBaseURL,
		CookieURL:       appConfig.YahooCookieURL,
		Timeout:         appConfig.YahooTimeout,
		RateLimit:       appConfig.YahooRateLimit,
		Burst:           appConfig.YahooBurst,
		MaxRetries:      appConfig.YahooMaxRetries,
		BreakerFailures: appConfig.YahooBreakerFailures,
		BreakerCooldown: appConfig.YahooBreakerCooldown,
	}, m)
	if err != nil {
		return fmt.Errorf("failed to create yahoo provider: %w", err)
	}
	marketService := market.NewService(yahoo, store, market.WithMetrics(m))

	index, err := search.NewIndex()
	if err != nil {
		return fmt.Errorf("failed to create ticker index: %w", err)
	}
	defer index.Close()
	if err := services.SeedTickerIndex(db, index); err != nil {
		log.Warnf("failed to seed ticker index: %v", err)
	}

	// Initialize services
	favoriteService := services.NewFavoriteService(db, marketService, appConfig.ValuationConcurrency)
	portfolioService := services.NewPortfolioService(db, marketService, m, appConfig.ValuationConcurrency)
	stockService := services.NewStockService(marketService, index, favoriteService, portfolioService)
	auditService := services.NewAuditService(db)

	validator.Register()

	router := server.NewRouter(server.Deps{
		Stocks:        stockService,
		Favorites:     favoriteService,
		Portfolio:     portfolioService,
		Audit:         auditService,
		Metrics:       m,
		Gatherer:      registry,
		MetricsAPIKey: appConfig.MetricsAPIKey,
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Finboard server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newStore(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	if cfg.CacheBackend != "redis" {
		return cache.NewMemory(), nil
	}
	store, err := cache.DialRedis(ctx, cache.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   cfg.CachePrefix,
	})
	if err != nil {
		return nil, err
	}
	logger.Get().Infof("Using redis result cache at %s", cfg.RedisAddr)
	return store, nil
}

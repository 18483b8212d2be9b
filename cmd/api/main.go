package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/coupon"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to MongoDB
	client, err := database.Connect(ctx, cfg.Mongo, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to mongo: %w", err)
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from mongo")
		}
	}()

	db := client.Database(cfg.Mongo.Database)

	if err := database.EnsureIndexes(ctx, db, logger); err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}

	// Resolve transaction capability per the configured mode. In auto mode a
	// single probe transaction decides; the checkout path still falls back at
	// runtime if the topology changes afterwards.
	txCapable := false
	switch cfg.Checkout.TxMode {
	case config.TxModeOn:
		txCapable = true
	case config.TxModeOff:
		txCapable = false
	case config.TxModeAuto:
		txCapable, err = database.ProbeTransactions(ctx, db, logger)
		if err != nil {
			return fmt.Errorf("transaction probe failed: %w", err)
		}
	}
	logger.Info().
		Str("tx_mode", cfg.Checkout.TxMode).
		Bool("tx_capable", txCapable).
		Msg("transaction capability resolved")

	// Product cache: Redis when enabled, a no-op otherwise.
	var productCache cache.ProductCache = cache.NoopCache{}
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close redis client")
			}
		}()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}

		productCache = cache.NewRedisCache(redisClient, cfg.Redis.TTL, logger)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("product cache enabled")
	} else {
		logger.Info().Msg("redis disabled, product cache is a no-op")
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(db, logger)
	cartRepo := repository.NewCartRepository(db, logger)
	orderRepo := repository.NewOrderRepository(db, logger)

	// Coupon catalogue from the configured JSON file; a missing file means an
	// empty catalogue, not a startup failure.
	coupons, err := coupon.NewResolverFromFile(cfg.Coupon.FilePath, logger)
	if err != nil {
		return fmt.Errorf("failed to load coupon catalogue: %w", err)
	}

	// Payment gateway verifier
	verifier := payment.NewGatewayVerifier(cfg.Payment.GatewayURL, cfg.Payment.Timeout, logger)

	// Initialize services
	txRunner := service.NewMongoTxRunner(client)
	productService := service.NewProductService(productRepo, productCache, logger)
	checkoutService := service.NewCheckoutService(
		orderRepo, productRepo, cartRepo,
		coupons, verifier, productCache,
		txRunner, txCapable, cfg.Checkout, logger,
	)
	orderService := service.NewOrderService(orderRepo, logger)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService, logger)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)

	// Initialize router
	mux := router.New(productHandler, checkoutHandler, orderHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

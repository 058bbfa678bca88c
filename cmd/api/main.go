package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"crypto-invest-wallet/config"
	"crypto-invest-wallet/internal/adapter/feed"
	httpHandler "crypto-invest-wallet/internal/adapter/http/handler"
	pgStorage "crypto-invest-wallet/internal/adapter/storage/postgres"
	redisStorage "crypto-invest-wallet/internal/adapter/storage/redis"
	"crypto-invest-wallet/internal/core/ports"
	"crypto-invest-wallet/internal/service"
	"crypto-invest-wallet/internal/worker"
	"crypto-invest-wallet/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Crypto Invest Wallet")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	if err := pgStorage.Migrate(ctx, pool, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	userRepo := pgStorage.NewUserRepo(pool)
	walletRepo := pgStorage.NewWalletRepo(pool)
	rateRepo := pgStorage.NewRateRepo(pool)
	payoutRepo := pgStorage.NewPayoutRepo(pool)
	investRepo := pgStorage.NewInvestmentRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	rateCache := redisStorage.NewRateCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	priceFeed := feed.NewCoinGeckoFeed(cfg.FX.FeedBaseURL, &http.Client{Timeout: cfg.FX.FeedTimeout})

	// Initialize business services
	authSvc := service.NewAuthService(userRepo, hashSvc, tokenSvc)
	ledgerSvc := service.NewLedgerService(walletRepo, transactor, log)
	fxOracle := service.NewFxOracle(rateRepo, rateCache, priceFeed, cfg.FX.VolatileAssets, log)
	converterSvc := service.NewConverterService(ledgerSvc, fxOracle, transactor, log)
	investSvc := service.NewInvestmentService(investRepo, ledgerSvc, fxOracle, transactor, cfg.Invest.DailyRatePct, log)
	settlementSvc := service.NewSettlementService(userRepo, payoutRepo, ledgerSvc, fxOracle, transactor, log)
	portfolioSvc := service.NewPortfolioService(walletRepo, fxOracle, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Start background workers
	workerCtx, stopWorkers := context.WithCancel(ctx)
	var wg sync.WaitGroup

	sweeper := worker.NewSweeper(investSvc, cfg.Invest.SweepInterval, log)
	refresher := worker.NewFxRefresher(fxOracle, cfg.FX.RefreshInterval, log)
	wg.Add(2)
	go func() {
		defer wg.Done()
		sweeper.Run(workerCtx)
	}()
	go func() {
		defer wg.Done()
		refresher.Run(workerCtx)
	}()

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		LedgerSvc:      ledgerSvc,
		ConverterSvc:   converterSvc,
		SettlementSvc:  settlementSvc,
		InvestSvc:      investSvc,
		PortfolioSvc:   portfolioSvc,
		FxOracle:       fxOracle,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		AdminToken:     cfg.FX.AdminToken,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	stopWorkers()
	wg.Wait()

	log.Info().Msg("Server exited")
}

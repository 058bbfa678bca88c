package handler

import (
	"crypto-invest-wallet/internal/adapter/http/middleware"
	redisStore "crypto-invest-wallet/internal/adapter/storage/redis"
	"crypto-invest-wallet/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	LedgerSvc      ports.LedgerService
	ConverterSvc   ports.ConverterService
	SettlementSvc  ports.SettlementService
	InvestSvc      ports.InvestmentService
	PortfolioSvc   ports.PortfolioService
	FxOracle       ports.FxOracle
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AdminToken     string // empty = admin routes disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit
	r.Use(middleware.AuditLog(deps.Logger))

	// Health check (verifies PostgreSQL and Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	fxHandler := NewFxHandler(deps.FxOracle)
	fx := v1.Group("/fx")
	{
		fx.GET("/rates", fxHandler.ListRates)
		fx.GET("/rates/:pair", fxHandler.GetRate)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	walletHandler := NewWalletHandler(deps.LedgerSvc, deps.ConverterSvc, deps.PortfolioSvc)
	investHandler := NewInvestHandler(deps.InvestSvc)
	settlementHandler := NewSettlementHandler(deps.SettlementSvc)

	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.GET("", rl("wallet"), walletHandler.GetBalances)
		wallets.POST("/deposit", rl("wallet"), walletHandler.Deposit)
		wallets.POST("/convert", rl("convert"), walletHandler.Convert)
	}

	invest := v1.Group("/invest", jwtAuth)
	{
		invest.POST("/deposit", rl("invest"), investHandler.Deposit)
		invest.GET("/status", rl("invest"), investHandler.Status)
		invest.POST("/reinvest", rl("invest"), investHandler.Reinvest)
		invest.POST("/claim", rl("invest"), investHandler.Claim)
		invest.PUT("/auto-compound", rl("invest"), investHandler.SetAutoCompound)
	}

	v1.GET("/portfolio", jwtAuth, rl("wallet"), walletHandler.GetPortfolio)
	v1.GET("/payouts", jwtAuth, rl("wallet"), settlementHandler.History)
	v1.PUT("/users/me/payout-preference", jwtAuth, rl("wallet"), authHandler.UpdatePayoutPreference)

	// --- Administrative routes (shared-token gated) ---
	adminAuth := middleware.AdminAuth(deps.AdminToken)
	admin := v1.Group("/admin", adminAuth)
	{
		admin.PUT("/fx/rates", rl("admin"), fxHandler.SetRate)
		admin.POST("/settlements", rl("admin"), settlementHandler.Settle)
	}

	return r
}

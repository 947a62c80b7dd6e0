package handler

import (
	"time"

	"aid-ledger/internal/adapter/http/middleware"
	redisStore "aid-ledger/internal/adapter/storage/redis"
	"aid-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const maxRequestBody = 1 << 20 // 1 MB

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	ReconcilerSvc    ports.ReconcilerService
	DistributionSvc  ports.DistributionService
	DonationSvc      ports.DonationService
	LedgerSvc        ports.LedgerService
	SigSvc           ports.SignatureService
	TokenSvc         ports.TokenService
	WebhookSecret    string // empty = signature verification disabled
	WebhookTolerance time.Duration
	RateLimitStore   *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers   []ports.HealthChecker
	Logger           zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxRequestBody))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

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

	// --- Payment provider notifications ---
	webhookHandler := NewWebhookHandler(deps.ReconcilerSvc)
	webhookAuth := middleware.WebhookSignature(deps.SigSvc, deps.WebhookSecret, deps.WebhookTolerance, deps.Logger)
	r.POST("/webhooks/payments", rl("webhooks"), webhookAuth, webhookHandler.HandlePaymentEvent)

	// --- Public ledger (no auth) ---
	ledgerHandler := NewLedgerHandler(deps.LedgerSvc, deps.Logger)
	ledger := r.Group("/ledger")
	{
		ledger.GET("", rl("ledger"), ledgerHandler.List)
		ledger.GET("/stats", rl("ledger"), ledgerHandler.Stats)
		ledger.GET("/export", rl("ledger_export"), ledgerHandler.Export)
	}

	// --- JWT-authenticated routes (donation intake and operators) ---
	v1 := r.Group("/api/v1")
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	audit := middleware.OperatorAudit(deps.Logger)

	donationHandler := NewDonationHandler(deps.DonationSvc)
	donations := v1.Group("/donations", jwtAuth, audit)
	{
		donations.POST("", rl("donations"), donationHandler.Create)
		donations.GET("/:id", rl("donations"), donationHandler.Get)
	}

	opsHandler := NewOpsHandler(deps.LedgerSvc, deps.DonationSvc, deps.DistributionSvc)
	ops := v1.Group("/ops", jwtAuth, audit)
	{
		ops.GET("/remediation", rl("ops"), opsHandler.Remediation)
		ops.GET("/reconciliation", rl("ops"), opsHandler.Reconciliation)
		ops.GET("/undistributed", rl("ops"), opsHandler.Undistributed)
		ops.POST("/donations/:id/distribute", rl("ops"), opsHandler.Distribute)
	}

	return r
}

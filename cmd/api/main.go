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

	"aid-ledger/config"
	httpHandler "aid-ledger/internal/adapter/http/handler"
	"aid-ledger/internal/adapter/payout"
	memStorage "aid-ledger/internal/adapter/storage/memory"
	pgStorage "aid-ledger/internal/adapter/storage/postgres"
	redisStorage "aid-ledger/internal/adapter/storage/redis"
	"aid-ledger/internal/core/ports"
	"aid-ledger/internal/service"
	"aid-ledger/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

// storage bundles the repositories of one storage driver.
type storage struct {
	donations   ports.DonationRepository
	vendors     ports.VendorRepository
	eligibility ports.EligibilityRepository
	txns        ports.TransactionRepository
	events      ports.ProcessedEventRepository
	transactor  ports.DBTransactor
	health      ports.HealthChecker
	close       func()
}

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file")
	pflag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Str("storage", cfg.Storage.Driver).
		Int("port", cfg.Server.Port).
		Msg("Starting Aid Ledger")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer store.close()

	healthCheckers := []ports.HealthChecker{store.health}

	// Redis backs the event cache, stats cache and rate limits. Every use
	// degrades when it is down, so startup continues without it.
	var (
		eventCache     ports.EventCache
		statsCache     ports.StatsCache
		rateLimitStore *redisStorage.RateLimitStore
	)
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, caches and rate limiting disabled")
	} else {
		defer rdb.Close()
		eventCache = redisStorage.NewEventCache(rdb)
		statsCache = redisStorage.NewStatsCache(rdb)
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	}

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	hasher, err := service.NewBLAKE3RecipientHasher(cfg.Ledger.RecipientHashSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize recipient hasher")
	}
	selector, err := service.NewVendorSelector(cfg.Distribution.VendorSelection)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize vendor selector")
	}
	standardAmounts, err := service.ParseStandardAmounts(cfg.Distribution.StandardAmounts)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid distribution.standard_amounts")
	}
	sigSvc := service.NewHMACSignatureService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	payoutClient := payout.NewClient(cfg.Payout.BaseURL, cfg.Payout.APIKey, &http.Client{Timeout: cfg.Payout.Timeout}, log)

	// Initialize business services
	engine := service.NewDistributionService(
		store.donations,
		store.vendors,
		store.eligibility,
		store.txns,
		store.transactor,
		selector,
		hasher,
		encSvc,
		payoutClient,
		service.DistributionSettings{
			StandardAmounts: standardAmounts,
			BatchSize:       cfg.Distribution.BatchSize,
			CooldownDays:    cfg.Distribution.CooldownDays,
			TransferTimeout: cfg.Payout.Timeout,
		},
		log,
	)

	var trigger ports.DistributionTrigger = service.NewSyncTrigger(engine, log)
	if cfg.Distribution.Async {
		queue := service.NewQueueTrigger(engine, cfg.Distribution.QueueSize, log)
		queue.Start(context.WithoutCancel(ctx))
		defer queue.Stop()
		trigger = queue
	}

	reconciler := service.NewReconcilerService(
		store.donations,
		store.events,
		store.txns,
		store.transactor,
		eventCache,
		trigger,
		cfg.Webhook.CacheTTL,
		log,
	)
	donationSvc := service.NewDonationService(store.donations, log)
	ledgerSvc := service.NewLedgerService(store.txns, statsCache, service.LedgerSettings{
		DefaultPageSize: cfg.Ledger.DefaultPageSize,
		MaxPageSize:     cfg.Ledger.MaxPageSize,
		StatsCacheTTL:   cfg.Ledger.StatsCacheTTL,
		ExportBatchSize: cfg.Ledger.ExportBatchSize,
	}, log)

	// Load OpenAPI spec for Swagger UI
	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetSwaggerSpec(specBytes)
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		ReconcilerSvc:    reconciler,
		DistributionSvc:  engine,
		DonationSvc:      donationSvc,
		LedgerSvc:        ledgerSvc,
		SigSvc:           sigSvc,
		TokenSvc:         tokenSvc,
		WebhookSecret:    cfg.Webhook.Secret,
		WebhookTolerance: cfg.Webhook.Tolerance,
		RateLimitStore:   rateLimitStore,
		HealthCheckers:   healthCheckers,
		Logger:           log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// openStorage builds the repositories for the configured driver.
func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case "memory":
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		mem := memStorage.NewStore()
		return &storage{
			donations:   memStorage.NewDonationRepo(mem),
			vendors:     memStorage.NewVendorRepo(mem),
			eligibility: memStorage.NewEligibilityRepo(mem),
			txns:        memStorage.NewTransactionRepo(mem),
			events:      memStorage.NewProcessedEventRepo(mem),
			transactor:  mem,
			health:      mem,
			close:       func() {},
		}, nil
	default:
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		log.Info().Msg("PostgreSQL connected")
		return &storage{
			donations:   pgStorage.NewDonationRepo(pool),
			vendors:     pgStorage.NewVendorRepo(pool),
			eligibility: pgStorage.NewEligibilityRepo(pool),
			txns:        pgStorage.NewTransactionRepo(pool),
			events:      pgStorage.NewProcessedEventRepo(pool),
			transactor:  pgStorage.NewTransactor(pool),
			health:      pgStorage.NewHealthCheck(pool),
			close:       pool.Close,
		}, nil
	}
}

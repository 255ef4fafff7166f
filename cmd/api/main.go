package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/godi-api/internal/application/service"
	"github.com/sangkips/godi-api/internal/config"
	"github.com/sangkips/godi-api/internal/domain/repository"
	"github.com/sangkips/godi-api/internal/infrastructure/database"
	"github.com/sangkips/godi-api/internal/infrastructure/events"
	"github.com/sangkips/godi-api/internal/infrastructure/metrics"
	infraRepo "github.com/sangkips/godi-api/internal/infrastructure/repository"
	"github.com/sangkips/godi-api/internal/presentation/http/handler"
	"github.com/sangkips/godi-api/internal/presentation/http/middleware"
	"github.com/sangkips/godi-api/internal/presentation/http/routes"
	"github.com/sangkips/godi-api/pkg/logger"
	"github.com/sangkips/godi-api/pkg/utils"
	"gorm.io/gorm"
)

const (
	shutdownGrace        = 15 * time.Second
	idempotencySweepTick = time.Hour
	eventBuffer          = 64
	eventsKeepAlive      = 25 * time.Second
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg := config.Load()

	logger.Init(cfg.App.Name, cfg.App.IsDevelopment())
	logger.SetLevel(cfg.Log.Level)
	if cfg.EnvFileMissing {
		logger.Warn(ctx).Msg("no .env file found; using environment variables and defaults")
	}

	// Set Gin mode based on environment
	if !cfg.App.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	location, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		logger.Fatal(ctx).Err(err).Str("timezone", cfg.App.Timezone).Msg("invalid APP_TIMEZONE")
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		logger.Fatal(ctx).Err(err).Msg("failed to connect to database")
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal(ctx).Err(err).Msg("failed to run migrations")
	}

	// Initialize repositories
	productRepo := infraRepo.NewProductRepository(db)
	transactionRepo := infraRepo.NewTransactionRepository(db)
	saleRepo := infraRepo.NewSaleRepository(db)
	idempotencyRepo := infraRepo.NewIdempotencyRepository(db)

	// Change notifications: in-process hub for SSE, optionally mirrored to Kafka
	hub := events.NewHub(eventBuffer)
	var publisher events.Publisher = hub
	var kafka *events.KafkaPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			logger.Fatal(ctx).Err(err).Strs("brokers", cfg.Kafka.Brokers).Msg("failed to connect to kafka")
		}
		publisher = events.Multi{hub, kafka}
	}

	m := metrics.New()

	// Initialize services
	productService := service.NewProductService(productRepo, publisher, m)
	saleService := service.NewSaleService(transactionRepo, saleRepo, productRepo, productService, publisher, m)
	dashboardService := service.NewDashboardService(productRepo, transactionRepo, saleRepo, cfg.Inventory)

	// Initialize handlers
	handlers := &routes.Handlers{
		Product:   handler.NewProductHandler(productService),
		Sale:      handler.NewSaleHandler(saleService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Events:    handler.NewEventsHandler(hub, eventsKeepAlive),
		Health: handler.NewHealthHandler(cfg.App.Name, func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}),
	}

	rateLimiter := middleware.NewAccountRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.Burst,
	})

	// Setup router
	router := routes.Setup(handlers, &routes.Deps{
		Verifier:        utils.NewTokenVerifier(cfg.JWT.Secret, cfg.JWT.Issuer),
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Metrics:         m,
		RateLimiter:     rateLimiter,
		Location:        location,
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweepIdempotencyKeys(runCtx, idempotencyRepo)

	go func() {
		logger.Info(ctx).Str("port", cfg.App.Port).Msgf("starting %s server", cfg.App.Name)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx).Err(err).Msg("failed to start server")
		}
	}()

	<-runCtx.Done()
	logger.Info(ctx).Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx).Err(err).Msg("graceful shutdown failed")
	}

	rateLimiter.Stop()
	if kafka != nil {
		if err := kafka.Close(); err != nil {
			logger.Warn(ctx).Err(err).Msg("closing kafka producer")
		}
	}
	closeDB(ctx, db)
}

// sweepIdempotencyKeys removes expired keys until ctx ends
func sweepIdempotencyKeys(ctx context.Context, repo repository.IdempotencyRepository) {
	ticker := time.NewTicker(idempotencySweepTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx)
			if err != nil {
				logger.Warn(ctx).Err(err).Msg("idempotency sweep failed")
				continue
			}
			if n > 0 {
				logger.Debug(ctx).Int64("deleted", n).Msg("expired idempotency keys removed")
			}
		}
	}
}

func closeDB(ctx context.Context, db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn(ctx).Err(err).Msg("closing database")
	}
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-coordinator/internal/api/http"
	"github.com/spec-kit/ticket-coordinator/internal/api/http/handlers"
	"github.com/spec-kit/ticket-coordinator/internal/auth"
	"github.com/spec-kit/ticket-coordinator/internal/clock"
	"github.com/spec-kit/ticket-coordinator/internal/config"
	"github.com/spec-kit/ticket-coordinator/internal/events"
	"github.com/spec-kit/ticket-coordinator/internal/gateway"
	"github.com/spec-kit/ticket-coordinator/internal/observability"
	"github.com/spec-kit/ticket-coordinator/internal/persistence"
	"github.com/spec-kit/ticket-coordinator/internal/repository"
	"github.com/spec-kit/ticket-coordinator/internal/service"
	"github.com/spec-kit/ticket-coordinator/internal/ticket"
	"github.com/spec-kit/ticket-coordinator/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	tenantRepo := repository.NewTenantRepository(pool)
	ledgerRepo := repository.NewLedgerRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	leaderboard := repository.NewLeaderboardCache(redis.Client)

	chatGateway := gateway.NewLoggingGateway(
		gateway.NewWebhookGateway(cfg.Gateway.BaseURL, cfg.Gateway.ServiceToken, cfg.Gateway.CallTimeout()),
		logger,
	)

	effects := worker.NewEffectsWorker(chatGateway, cfg.Effects, cfg.Gateway.CallTimeout(), logger)
	effects.Start(ctx)

	dispatcher := events.NewInMemoryDispatcher()
	systemClock := clock.NewSystem()

	registry := ticket.NewRegistry(ticket.Dependencies{
		Settings:       tenantRepo,
		Tickets:        ticketRepo,
		Gateway:        chatGateway,
		Ledger:         ledgerRepo,
		Effects:        effects,
		Dispatcher:     dispatcher,
		Logger:         logger,
		Clock:          systemClock,
		HistoryTimeout: cfg.Gateway.HistoryTimeout(),
	})
	if err := registry.Rehydrate(ctx); err != nil {
		logger.Fatal("failed to rehydrate ticket sessions", zap.Error(err))
	}

	pointsService := service.NewPointsService(service.PointsDependencies{
		TenantRepo: tenantRepo,
		LedgerRepo: ledgerRepo,
		Cache:      leaderboard,
		Dispatcher: dispatcher,
		Logger:     logger,
		Clock:      systemClock,
	})
	pointsService.RegisterHandlers()

	configService := service.NewConfigService(service.ConfigDependencies{
		TenantRepo: tenantRepo,
		Logger:     logger,
	})

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLMinutes)
	tokenService := service.NewTokenService(service.TokenDependencies{
		TenantRepo:   tenantRepo,
		TokenManager: tokenManager,
		BcryptCost:   cfg.Auth.BcryptCost,
		Logger:       logger,
	})
	authMiddleware := auth.NewAuthMiddleware(tokenManager)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(tokenService),
		Tickets:        handlers.NewTicketsHandler(registry),
		Points:         handlers.NewPointsHandler(pointsService),
		Config:         handlers.NewConfigHandler(configService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

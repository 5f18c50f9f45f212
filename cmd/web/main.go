package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-portal/internal/auth"
	"github.com/spec-kit/ticket-portal/internal/config"
	"github.com/spec-kit/ticket-portal/internal/observability"
	"github.com/spec-kit/ticket-portal/internal/persistence"
	"github.com/spec-kit/ticket-portal/internal/repository"
	"github.com/spec-kit/ticket-portal/internal/service"
	"github.com/spec-kit/ticket-portal/internal/web"
	"github.com/spec-kit/ticket-portal/internal/web/handlers"
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

	if cfg.Postgres.CreateSchema {
		if err := persistence.EnsureSchema(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to ensure schema", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var userRepo repository.UserRepository
	var ticketRepo repository.TicketRepository
	if pool := pg.PoolHandle(); pool != nil {
		userRepo = repository.NewUserRepository(pool)
		ticketRepo = repository.NewTicketRepository(pool)
	} else {
		userRepo = repository.NewMemoryUserRepository()
		ticketRepo = repository.NewMemoryTicketRepository()
	}

	var sessions auth.SessionStore
	if client := redis.ClientHandle(); client != nil {
		sessions = auth.NewRedisSessionStore(client, cfg.Auth.SessionTTL())
	} else {
		sessions = auth.NewMemorySessionStore(cfg.Auth.SessionTTL())
	}

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo: userRepo,
		Sessions: sessions,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
	})

	if admin, err := authService.EnsureAdmin(ctx, cfg.Admin); err != nil {
		logger.Fatal("failed to seed admin account", zap.Error(err))
	} else if admin != nil && !admin.Role.IsAdmin() {
		logger.Warn("configured admin username belongs to an ordinary account; no admin login exists",
			zap.String("username", admin.Username))
	} else if admin != nil {
		logger.Info("admin account available", zap.String("username", admin.Username))
	}

	authMiddleware := auth.NewMiddleware(sessions, userRepo, cfg.Auth.CookieName)
	metrics := observability.NewMetrics()

	engine := html.New(cfg.App.TemplateDir, ".html")
	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
		Views:   engine,
		// Form values and cookies must outlive the request: they are
		// stored in the repositories and session store.
		Immutable: true,
	})
	web.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	web.RegisterRoutes(app, web.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, cfg.Auth),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Admin:          handlers.NewAdminHandler(ticketService),
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

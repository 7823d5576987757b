package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/authz"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/ratelimit"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/repository/memory"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/internal/worker"
)

// application holds the wired object graph shared by the subcommands.
type application struct {
	cfg        *config.Config
	logger     *zap.Logger
	postgres   *persistence.Postgres
	redis      *persistence.Redis
	store      repository.Store
	storage    string
	evaluator  *authz.Evaluator
	dispatcher events.Dispatcher
	tokens     *auth.TokenManager

	categories  *service.CategoryService
	roles       *service.RoleService
	employees   *service.EmployeeService
	tickets     *service.TicketService
	assignments *service.AssignmentService
	authService *service.AuthService
}

func loadConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

func newApplication(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*application, error) {
	app := &application{cfg: cfg, logger: logger}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	app.postgres = pg

	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		app.store = repository.NewPostgresStore(pool)
		app.storage = "postgres"
	} else {
		app.store = memory.NewStore()
		app.storage = "memory"
	}

	app.redis = persistence.NewRedis(cfg.Redis, logger)
	redisClient := app.redis.ClientHandle()

	app.evaluator = authz.NewEvaluator(authz.EvaluatorDependencies{
		Store:  app.store,
		Cache:  authz.NewRedisRoleCache(redisClient, cfg.Redis.RoleCacheTTL(), logger),
		Logger: logger,
	})
	app.dispatcher = events.NewInMemoryDispatcher(logger)
	app.tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	app.categories = service.NewCategoryService(service.CategoryDependencies{
		Store: app.store, Authz: app.evaluator, Logger: logger,
	})
	app.roles = service.NewRoleService(service.RoleDependencies{
		Store: app.store, Authz: app.evaluator, Logger: logger,
	})
	app.employees = service.NewEmployeeService(service.EmployeeDependencies{
		Store: app.store, Authz: app.evaluator, Logger: logger, BcryptCost: cfg.Auth.BcryptCost,
	})
	app.tickets = service.NewTicketService(service.TicketDependencies{
		Store:        app.store,
		Authz:        app.evaluator,
		Dispatcher:   app.dispatcher,
		Logger:       logger,
		NumberPrefix: cfg.Ticket.NumberPrefix,
	})
	app.assignments = service.NewAssignmentService(service.AssignmentDependencies{
		Store: app.store, Authz: app.evaluator, Dispatcher: app.dispatcher, Logger: logger,
	})
	app.authService = service.NewAuthService(service.AuthDependencies{
		Store:        app.store,
		TokenManager: app.tokens,
		Limiter:      ratelimit.NewRedisLimiter(redisClient, "helpdesk:login", cfg.Auth.LoginAttemptsPerMinute, time.Minute),
		Logger:       logger,
	})

	worker.StartActivityWorker(service.NewActivityService(app.dispatcher, logger))

	if app.storage == "memory" {
		seeded, err := app.roles.SeedSystemRoles(ctx)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("seed system roles: %w", err)
		}
		logger.Warn("POSTGRES_DSN not provided; using in-memory store", zap.Int("seeded_roles", seeded))
	}
	return app, nil
}

func (a *application) close() {
	a.redis.Close()
	a.postgres.Close()
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk/internal/api/http"
	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/observability"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfigAndLogger()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			app, err := newApplication(ctx, cfg, logger)
			if err != nil {
				logger.Error("startup failed", zap.Error(err))
				return err
			}
			defer app.close()

			server := buildServer(app)
			go func() {
				if err := server.Listen(cfg.App.Addr()); err != nil {
					logger.Fatal("fiber listen", zap.Error(err))
				}
			}()

			waitForShutdown(logger)
			return server.ShutdownWithTimeout(cfg.App.RequestTimeout())
		},
	}
}

func buildServer(app *application) *fiber.App {
	metrics := observability.NewMetrics()
	server := fiber.New(fiber.Config{
		AppName:               app.cfg.App.Name,
		ErrorHandler:          httptransport.ErrorHandler,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(server, app.logger, metrics, app.cfg.App.RequestTimeout())

	var checks []handlers.HealthCheck
	if app.postgres.PoolHandle() != nil {
		checks = append(checks, handlers.HealthCheck{Name: "postgres", Check: app.postgres.Ping})
	}
	if app.redis.ClientHandle() != nil {
		checks = append(checks, handlers.HealthCheck{Name: "redis", Check: app.redis.Ping})
	}

	httptransport.RegisterRoutes(server, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(app.cfg.App.Name, app.cfg.App.Version, app.storage, metrics, checks...),
		Auth:           handlers.NewAuthHandler(app.authService),
		Tickets:        handlers.NewTicketsHandler(app.tickets, app.assignments),
		Categories:     handlers.NewCategoriesHandler(app.categories),
		Roles:          handlers.NewRolesHandler(app.roles),
		Employees:      handlers.NewEmployeesHandler(app.employees),
		AuthMiddleware: auth.NewAuthMiddleware(app.tokens),
	})
	return server
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

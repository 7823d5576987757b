package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/persistence"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPostgres(cmd.Context(), func(ctx context.Context, pg *persistence.Postgres, logger *zap.Logger) error {
				return persistence.RollbackMigrations(ctx, pg.PoolHandle(), steps, logger)
			})
		},
	}
	down.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Run all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withPostgres(cmd.Context(), func(ctx context.Context, pg *persistence.Postgres, logger *zap.Logger) error {
					return persistence.RunMigrations(ctx, pg.PoolHandle(), logger)
				})
			},
		},
		down,
		&cobra.Command{
			Use:   "status",
			Short: "Show migration status",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withPostgres(cmd.Context(), func(ctx context.Context, pg *persistence.Postgres, _ *zap.Logger) error {
					states, err := persistence.MigrationStatus(ctx, pg.PoolHandle())
					if err != nil {
						return err
					}
					out := cmd.OutOrStdout()
					for _, st := range states {
						state := "pending"
						if st.Applied {
							state = "applied"
						}
						fmt.Fprintf(out, "%05d  %-8s %s\n", st.Version, state, st.File)
					}
					return nil
				})
			},
		},
	)
	return cmd
}

func withPostgres(ctx context.Context, fn func(ctx context.Context, pg *persistence.Postgres, logger *zap.Logger) error) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Postgres.DSN == "" {
		return errors.New("POSTGRES_DSN is required for migrations")
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()
	return fn(ctx, pg, logger)
}

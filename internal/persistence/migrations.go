package persistence

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const migrationsDir = "migrations"

func withGoose(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context, provider *goose.Provider) error) error {
	if pool == nil {
		return fmt.Errorf("postgres pool not configured")
	}
	scripts, err := fs.Sub(migrationFS, migrationsDir)
	if err != nil {
		return err
	}
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, scripts)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	return fn(ctx, provider)
}

// RunMigrations applies every pending migration embedded in the binary.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}
	return withGoose(ctx, pool, func(ctx context.Context, provider *goose.Provider) error {
		results, err := provider.Up(ctx)
		if err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		for _, res := range results {
			logger.Info("applied migration",
				zap.String("file", res.Source.Path),
				zap.Duration("duration", res.Duration))
		}
		version, err := provider.GetDBVersion(ctx)
		if err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
		logger.Info("migrations applied", zap.Int("count", len(results)), zap.Int64("version", version))
		return nil
	})
}

// RollbackMigrations reverts the given number of applied migrations.
func RollbackMigrations(ctx context.Context, pool *pgxpool.Pool, steps int, logger *zap.Logger) error {
	if steps <= 0 {
		steps = 1
	}
	return withGoose(ctx, pool, func(ctx context.Context, provider *goose.Provider) error {
		for i := 0; i < steps; i++ {
			res, err := provider.Down(ctx)
			if err != nil {
				return fmt.Errorf("rollback migration: %w", err)
			}
			logger.Info("rolled back migration", zap.String("file", res.Source.Path))
		}
		return nil
	})
}

// MigrationState is one row of the migration status report.
type MigrationState struct {
	Version int64
	File    string
	Applied bool
}

// MigrationStatus reports every known migration and whether it has been applied.
func MigrationStatus(ctx context.Context, pool *pgxpool.Pool) ([]MigrationState, error) {
	var states []MigrationState
	err := withGoose(ctx, pool, func(ctx context.Context, provider *goose.Provider) error {
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("read migration status: %w", err)
		}
		for _, st := range statuses {
			states = append(states, MigrationState{
				Version: st.Source.Version,
				File:    st.Source.Path,
				Applied: st.State == goose.StateApplied,
			})
		}
		return nil
	})
	return states, err
}

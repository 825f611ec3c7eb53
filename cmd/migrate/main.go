package main

// Run database migrations:
//   go run ./cmd/migrate up
//   go run ./cmd/migrate status
//   go run ./cmd/migrate down

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hse-backend/internal/shared/config"
	"hse-backend/internal/shared/storage/db"
	"hse-backend/internal/shared/telemetry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the HSE database schema",
		SilenceUsage: true,
	}
	root.AddCommand(
		migrationCmd("up", "Apply pending migrations", func(ctx context.Context, cmd *cobra.Command, sqlDB *sql.DB) error {
			return db.RunMigrations(ctx, sqlDB)
		}),
		migrationCmd("down", "Revert the last migration", func(ctx context.Context, cmd *cobra.Command, sqlDB *sql.DB) error {
			return db.RollbackMigration(ctx, sqlDB)
		}),
		migrationCmd("status", "Print the current schema version", func(ctx context.Context, cmd *cobra.Command, sqlDB *sql.DB) error {
			version, err := db.MigrationVersion(ctx, sqlDB)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		}),
	)
	return root
}

func migrationCmd(use, short string, fn func(context.Context, *cobra.Command, *sql.DB) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			ctx := cmd.Context()

			sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultCLIOptions()))
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer sqlDB.Close()

			if err := fn(ctx, cmd, sqlDB); err != nil {
				return err
			}
			telemetry.Info("migrate.done", map[string]any{"command": use})
			return nil
		},
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jupiterclapton/cenackle/services/community-service/config"
	"github.com/jupiterclapton/cenackle/services/community-service/internal/adapters/secondary/repository"
	"github.com/jupiterclapton/cenackle/services/community-service/internal/telemetry"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the Neo4j uniqueness constraints and indexes",
		Long:  "Idempotent: every statement uses IF NOT EXISTS. Also run by `serve` at startup.",
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	slog.SetDefault(telemetry.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel))

	driver, err := connectNeo4j(ctx, cfg)
	if err != nil {
		return err
	}
	defer driver.Close(context.Background())

	if err := repository.NewNeo4jRepo(driver, cfg.Neo4jDatabase).EnsureSchema(ctx); err != nil {
		return err
	}
	slog.Info("✅ Schema up to date")
	return nil
}

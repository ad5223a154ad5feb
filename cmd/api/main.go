// Package main is the entry point for the investor finder API server.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/capitalize-ai/investor-finder/internal/config"
	"github.com/capitalize-ai/investor-finder/internal/service"
	"github.com/capitalize-ai/investor-finder/internal/store"
	"github.com/capitalize-ai/investor-finder/pkg/logger"
)

func main() {
	cfg := config.Load()

	root := &cobra.Command{
		Use:           "investor-finder",
		Short:         "Chat service that finds startup investors",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfg)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cfg)
		},
	})

	olderThan := cfg.ConversationTTL
	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete conversations idle for longer than --older-than",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCleanup(cmd.Context(), cfg, olderThan)
		},
	}
	cleanup.Flags().DurationVar(&olderThan, "older-than", olderThan, "Remove conversations not updated within this duration")
	root.AddCommand(cleanup)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger and installs it globally.
func newLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.FromEnv(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	logger.SetGlobal(log)
	return log, nil
}

func runMigrate(cfg *config.Config) error {
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := store.Open(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer store.Close(db)

	if err := store.Migrate(db); err != nil {
		return err
	}
	log.Info("database migrated")
	return nil
}

func runCleanup(ctx context.Context, cfg *config.Config, olderThan time.Duration) error {
	if olderThan <= 0 {
		return fmt.Errorf("--older-than must be positive, got %s", olderThan)
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := store.Open(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer store.Close(db)
	if err := store.Migrate(db); err != nil {
		return err
	}

	removed, err := service.NewConversationService(store.New(db), log).Cleanup(ctx, olderThan)
	if err != nil {
		return err
	}
	log.Info("cleanup finished", zap.Int64("removed", removed))
	return nil
}

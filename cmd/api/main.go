package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/baharkarakas/reliefshare/internal/config"
	"github.com/baharkarakas/reliefshare/internal/db"
	"github.com/baharkarakas/reliefshare/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("exit", "err", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var cfg config.Config
	root := &cobra.Command{
		Use:           "reliefshare",
		Short:         "Share relief resources with people who need them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cfg = config.Load()
			slog.SetDefault(logger.New(cfg.Env))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfg)
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(cmd.Context(), cfg)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(cmd *cobra.Command, _ []string) error {
				pool, err := db.NewPool(cmd.Context(), cfg.DatabaseURL)
				if err != nil {
					return err
				}
				defer pool.Close()
				return db.RunMigrations(cmd.Context(), pool)
			},
		},
	)
	return root
}

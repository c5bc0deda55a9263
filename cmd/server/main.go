// Package main is the entry point of the Tablaturi API server. Running it
// without a subcommand serves the API; "migrate" manages the database schema.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gryp17/Tablaturi-bg-API/internal/config"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/postgres"
	"github.com/spf13/cobra"
)

// configDir is bound to the --config flag. Empty means the working directory.
var configDir string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "tablaturi-api",
		Short:        "Serve the Tablaturi guitar tab API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&configDir, "config", "", "directory holding config.yaml")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back or list database migrations",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{postgres.MigrateUp, postgres.MigrateDown, postgres.MigrateStatus},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), args[0])
		},
	})
	return root
}

// bootstrap loads configuration and sets up structured logging.
func bootstrap() (*config.Config, *slog.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	if configDir != "" {
		cfg, err = config.LoadFrom(configDir)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return cfg, log, nil
}

func runServe(ctx context.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("redis_sessions", cfg.Session.RedisAddr != ""),
		slog.Bool("smtp", cfg.Mail.Host != ""))

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", err.Error()))
		return err
	}
	defer app.cleanup()

	return app.Run(ctx)
}

func runMigrate(ctx context.Context, command string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		log.Error("failed to open database", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Error("error closing database connection", slog.String("error", cerr.Error()))
		}
	}()

	if err := postgres.Migrate(ctx, db, command, log); err != nil {
		log.Error("migration failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/manpower/cmd/cli/commands"
	"github.com/jakechorley/manpower/internal/config"
	"github.com/jakechorley/manpower/pkg/cache"
	"github.com/jakechorley/manpower/pkg/clients/gmailclient"
	"github.com/jakechorley/manpower/pkg/postgres"
	"github.com/jakechorley/manpower/pkg/utils/logging"
)

const logsDir = "logs"

var (
	env string
	app = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "manpower",
		Short: "Manpower CLI - Rank and schedule employees against manpower requests",
		Long:  `A CLI tool for raising manpower requests, ranking candidates, scheduling employees and managing absence permits.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.CreateRequestCmd(app))
	rootCmd.AddCommand(commands.RejectRequestCmd(app))
	rootCmd.AddCommand(commands.GenerateRecurringRequestsCmd(app))
	rootCmd.AddCommand(commands.RankCandidatesCmd(app))
	rootCmd.AddCommand(commands.FulfillCmd(app))
	rootCmd.AddCommand(commands.AcceptScheduleCmd(app))
	rootCmd.AddCommand(commands.RejectScheduleCmd(app))
	rootCmd.AddCommand(commands.FilePermitCmd(app))
	rootCmd.AddCommand(commands.ShowPermitCmd(app))
	rootCmd.AddCommand(commands.ApprovePermitCmd(app))
	rootCmd.AddCommand(commands.RejectPermitCmd(app))
	rootCmd.AddCommand(commands.CancelPermitCmd(app))
	rootCmd.AddCommand(commands.SyncStatusesCmd(app))
	rootCmd.AddCommand(commands.InvalidateMetricsCmd(app))
	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	err := rootCmd.Execute()
	app.Close()
	if err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, database, cache and notification client
func initApp() error {
	var err error
	app.Ctx = context.Background()

	app.Logger, err = logging.InitLogger(env, logsDir)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully", zap.String("timezone", app.Cfg.Timezone))

	app.Logger.Info("Connecting to database")
	app.Database, err = postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.Logger.Debug("Database connected successfully")

	app.Metrics = app.Database
	if app.Cfg.Redis.Addr != "" {
		app.Logger.Info("Connecting to redis", zap.String("addr", app.Cfg.Redis.Addr))
		app.Redis, err = cache.NewRedisClient(app.Ctx, app.Cfg.Redis)
		if err != nil {
			return err
		}
		app.MetricsCache = cache.NewMetricsCache(app.Redis, app.Database, app.Cfg.Redis.MetricsTTL, app.Logger)
		app.Metrics = app.MetricsCache
		app.Logger.Debug("Metrics cache enabled", zap.Duration("ttl", app.Cfg.Redis.MetricsTTL))
	}

	if app.Cfg.Notifications.Enabled {
		app.Logger.Info("Initializing gmail client")
		gmailClient, err := gmailclient.NewClient(app.Ctx, app.Cfg.Notifications.CredentialsFile, app.Cfg.Notifications.Sender)
		if err != nil {
			return fmt.Errorf("failed to create gmail client: %w", err)
		}
		app.Notifier = gmailClient
		app.Logger.Debug("Gmail client initialized successfully")
	}

	app.Logger.Info("Application initialized successfully")
	return nil
}

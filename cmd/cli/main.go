package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-rules/cmd/cli/commands"
	"github.com/jakechorley/shift-rules/internal/config"
	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/utils/logging"
)

var (
	env    string
	app    = &commands.AppContext{}
	logger *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shift-rules",
		Short: "Shift Rules CLI - Validate schedules and suggest staffing",
		Long: `A CLI tool that checks candidate shift assignments against the scheduling rules,
saves the ones that pass, and recommends employees for a week of shifts.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return shutdown()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (selects shift_rules_config.<env>.yaml)")

	rootCmd.AddCommand(commands.ValidateCmd(app))
	rootCmd.AddCommand(commands.CreateScheduleCmd(app))
	rootCmd.AddCommand(commands.SuggestCmd(app))
	rootCmd.AddCommand(commands.WeeklyStatsCmd(app))
	rootCmd.AddCommand(commands.ListEmployeesCmd(app))
	rootCmd.AddCommand(commands.ImportEmployeesCmd(app))

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		// A rejected schedule still saves nothing, but earlier runs' connections need closing
		if shutdownErr := shutdown(); shutdownErr != nil {
			fmt.Fprintln(os.Stderr, shutdownErr)
		}
		var failure *model.ValidationFailure
		if errors.As(err, &failure) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// initApp sets up logger, config and the application context
func initApp(ctx context.Context) error {
	var err error
	logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Starting application", zap.String("environment", env))

	logger.Debug("Loading configuration")
	cfg, err := config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Debug("Configuration loaded successfully",
		zap.String("database", cfg.Database.Driver),
		zap.String("roster", cfg.Roster.Source))

	return app.Init(ctx, env, cfg, logger)
}

// shutdown saves new schedules, drains pending events and closes connections.
// Safe to call more than once.
func shutdown() error {
	if app.Scheduler == nil {
		return nil
	}

	flushErr := app.Flush()
	closeErr := app.Close()
	if logger != nil {
		_ = logger.Sync()
	}
	app.Scheduler = nil

	return errors.Join(flushErr, closeErr)
}

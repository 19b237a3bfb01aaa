package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Dosada05/poker-club/config"
	"github.com/Dosada05/poker-club/db"
	"github.com/spf13/cobra"
)

var (
	logLevel string

	cfg    *config.Config
	logger *slog.Logger
	dbConn *sql.DB
)

var rootCmd = &cobra.Command{
	Use:   "clubctl",
	Short: "Administrative tool for the poker club server",
	Long: `clubctl runs maintenance tasks against the poker club database:
schema migrations, admin account bootstrap and full points recalculation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		level := cfg.LogLevel
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		logger = config.NewLogger(os.Stderr, level)

		dbConn, err = db.Connect(cmd.Context(), cfg.DatabaseURL, cfg.DBConnectTimeout)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if dbConn == nil {
			return nil
		}
		if err := dbConn.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "clubctl: %s\n", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}

package main

import (
	"fmt"

	"github.com/Dosada05/poker-club/db"
	"github.com/Dosada05/poker-club/metrics"
	"github.com/Dosada05/poker-club/repositories"
	"github.com/Dosada05/poker-club/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)

	createAdminCmd.Flags().String("email", "", "admin email")
	createAdminCmd.Flags().String("password", "", "admin password, at least 8 characters")
	createAdminCmd.Flags().String("name", "Admin", "display name")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(recalcCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return db.Migrate(cmd.Context(), dbConn, logger)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return db.MigrateDown(cmd.Context(), dbConn, logger)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the status of every migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return db.MigrationStatus(cmd.Context(), dbConn, logger)
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account or promote an existing user",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		name, _ := cmd.Flags().GetString("name")

		authService := services.NewAuthService(repositories.NewPostgresUserRepository(dbConn), logger)
		user, created, err := authService.CreateAdmin(cmd.Context(), services.CreateAdminInput{
			Email:    email,
			Password: password,
			Name:     name,
		})
		if err != nil {
			return err
		}

		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (id %s)\n", user.Email, user.ID)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "user %s promoted to admin (id %s)\n", user.Email, user.ID)
		}
		return nil
	},
}

var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Recalculate points of every tournament and statistics of every player",
	RunE: func(cmd *cobra.Command, args []string) error {
		recalculator := services.NewRecalculator(
			repositories.NewTransactor(dbConn),
			repositories.NewPostgresPlayerRepository(dbConn),
			repositories.NewPostgresTournamentRepository(dbConn),
			repositories.NewPostgresParticipationRepository(dbConn),
			repositories.NewPostgresStatisticsRepository(dbConn),
			metrics.NewService(prometheus.NewRegistry()),
			logger,
		)

		summary, err := recalculator.RecalculateAll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "recalculated %d tournaments and %d players\n", summary.Tournaments, summary.Players)
		return nil
	},
}

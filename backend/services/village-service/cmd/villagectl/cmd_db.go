package main

import (
	"context"
	"database/sql"
	"errors"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
	_ "github.com/jackc/pgx/v4/stdlib" // registers the "pgx" database/sql driver
	"github.com/spf13/cobra"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/app"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

var errNoDBURL = errors.New("database URL missing: pass --db-url or set DB_URL")

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dbURL == "" {
			return errNoDBURL
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		db, err := sql.Open("pgx", dbURL)
		if err != nil {
			return err
		}
		defer db.Close()
		return app.RunMigrations(ctx, db)
	},
}

var seedPassword string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the super admin and the demo project",
	Long: `Seed the super admin and the demo project with its units, staff,
residents and facilities. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if dbURL == "" {
			return errNoDBURL
		}
		if seedPassword == "" {
			seedPassword = os.Getenv("SEED_PASSWORD")
		}
		if err := utils.ValidatePasswordStrength(seedPassword); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		pool, err := pgxpool.Connect(ctx, dbURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := app.SeedAllTestData(ctx, pool, seedPassword); err != nil {
			return err
		}
		utils.Logger.Info("Seed complete")
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", "", "Password for seeded accounts (default: $SEED_PASSWORD)")
}

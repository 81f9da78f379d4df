// villagectl is the operator CLI for village-service: schema migrations,
// seeding, one-off job runs and credential helpers.
package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

var (
	dbURL   string
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "villagectl",
	Short:         "Operator tooling for village-service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; real deployments inject the environment.
		_ = godotenv.Load()
		if dbURL == "" {
			dbURL = os.Getenv("DB_URL")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "Postgres URL (default: $DB_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(testEmailCmd)
	rootCmd.AddCommand(hashPasswordCmd)
	rootCmd.AddCommand(runJobCmd)
}

func main() {
	utils.InitLogger("villagectl")
	if err := rootCmd.Execute(); err != nil {
		utils.Logger.WithError(err).Error("villagectl failed")
		os.Exit(1)
	}
}

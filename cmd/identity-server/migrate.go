package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"learnsol-identity/internal/app/config"
	"learnsol-identity/internal/app/database"
	"learnsol-identity/pkg/logger"
	"learnsol-identity/pkg/utilities"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the wallet binding and audit tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.InitDefaultLogger(logger.GlobalLoggerConfig{Args: []logger.LoggerArg{{Key: "service", Value: serviceName}}})
		l := logger.Default()
		_ = godotenv.Load()

		cfg, err := utilities.ReadConfig[config.IdentityConfigJson, config.IdentityConfig](configPath)
		if err != nil {
			l.Error(err, "Failed to load config")
			return err
		}

		db, err := database.Open(cfg.GetDatabaseConfig())
		if err != nil {
			l.Error(err, "Cannot establish database connection")
			return err
		}

		database.RunMigrations(db, l)
		return nil
	},
}

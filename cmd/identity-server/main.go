package main

import (
	"os"

	"github.com/spf13/cobra"
)

const serviceName = "identity-server"

var configPath string

var rootCmd = &cobra.Command{
	Use:   serviceName,
	Short: "learn.sol identity verification and wallet binding service",
}

// @title                       learn.sol Identity API
// @version                     1.0
// @description                 Identity token verification and wallet binding
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json", "path to the JSON config file")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

/*
Copyright © 2025 skyactions authors
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/skyactions/pkg/api"
	"github.com/ssargent/skyactions/pkg/config"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the skyactions REST API server.

The API key comes from the configuration file. When it is still "auto" a
key is generated for this run and printed.

Examples:
  skyactions serve --port=8080
  skyactions serve --config=./skyactions.yaml --bind=0.0.0.0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := container.Config()
		logger := container.Logger()

		serverConfig := api.ServerConfig{
			Bind:   cfg.Bind,
			Port:   cfg.Port,
			APIKey: cfg.Security.APIKey,
		}
		if cmd.Flags().Changed("port") {
			serverConfig.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			serverConfig.Bind, _ = cmd.Flags().GetString("bind")
		}
		if serverConfig.APIKey == "auto" {
			key, err := config.GenerateSecureKey(32)
			if err != nil {
				return err
			}
			serverConfig.APIKey = key
			cmd.Printf("Generated API key for this run: %s\n", key)
		}

		cat, err := container.Catalog()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
		defer stop()

		starter := container.GetServerFactory().CreateServerStarter()
		return starter.StartServer(ctx, cat, serverConfig, container.Metrics(), logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind to")
}

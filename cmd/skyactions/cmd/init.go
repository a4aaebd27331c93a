/*
Copyright © 2025 skyactions authors
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/skyactions/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a skyactions configuration and data directory",
	Long: `Initialize skyactions for local use.

This command will:
- Write a configuration file with a generated API key
- Create the data directory and the table catalog

Examples:
  skyactions init --data-dir=./data
  skyactions init --config=./skyactions.yaml --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		force, _ := cmd.Flags().GetBool("force")
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		cfg := container.Config()
		if config.ConfigExists(configPath) && !force {
			cmd.Printf("Configuration already exists at %s. Use --force to overwrite.\n", configPath)
			return nil
		}

		bootstrapped, err := initialize(configPath, cfg.DataDir)
		if err != nil {
			return err
		}

		cmd.Printf("✅ skyactions initialized\n")
		cmd.Printf("Config file: %s\n", configPath)
		cmd.Printf("Data directory: %s\n", bootstrapped.DataDir)
		cmd.Printf("API key: %s\n", bootstrapped.Security.APIKey)
		cmd.Printf("\nYou can now create a table with:\n")
		cmd.Printf("  skyactions table create events --config=%s\n", configPath)
		return nil
	},
}

// initialize writes a fresh configuration and opens the catalog so the data
// directory exists.
func initialize(configPath, dataDir string) (*config.Config, error) {
	cfg, err := config.BootstrapConfig(configPath, dataDir)
	if err != nil {
		return nil, err
	}

	container.Configure(cfg, nil)
	if _, err := container.Catalog(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return cfg, nil
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration file")
}

/*
Copyright © 2025 skyactions authors
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/skyactions/pkg/config"
	"github.com/ssargent/skyactions/pkg/di"
	"github.com/ssargent/skyactions/pkg/logging"
)

var container *di.Container

// SetContainer injects the dependency container used by every command
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "skyactions",
	Short: "skyactions - per-table action registries",
	Long: `skyactions manages the named, ordered action registries that belong to
tables. Each table keeps its actions in a MessagePack encoded "actions" file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return fmt.Errorf("dependency container not initialized")
		}

		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		logger, err := logging.New(os.Stderr, cfg.Logging.Level)
		if err != nil {
			return err
		}

		container.Configure(cfg, logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := execute(os.Args[1:], os.Stdout); err != nil {
		os.Exit(1)
	}
}

// execute runs the command tree with args and releases the container afterwards.
func execute(args []string, out io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)

	err := rootCmd.Execute()
	if container != nil {
		if closeErr := container.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

// resolveConfig loads the config file, when there is one, and applies flag overrides.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	cfg := config.DefaultConfig()
	switch {
	case configPath != "" && cmd == initCmd && !config.ConfigExists(configPath):
		// init is about to create it.
	case configPath != "":
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case config.ConfigExists(config.GetDefaultConfigPath()):
		loaded, err := config.LoadConfig(config.GetDefaultConfigPath())
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringP("data-dir", "d", "./data", "Data directory for tables and the catalog")
	rootCmd.PersistentFlags().String("config", "", "Path to the configuration file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}

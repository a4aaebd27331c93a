/*
Copyright © 2025 skyactions authors
*/
package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

// tableCmd groups the table management commands
var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Manage tables",
}

var tableCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a table",
	Long: `Create a table and its empty actions file.

Example:
  skyactions table create events`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := container.Catalog()
		if err != nil {
			return err
		}

		t, err := cat.CreateTable(args[0])
		if err != nil {
			return err
		}
		cmd.Printf("Created table '%s' (%s) at %s\n", t.Name(), t.ID, t.Path())
		return nil
	},
}

var tableListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := container.Catalog()
		if err != nil {
			return err
		}

		tables, err := cat.ListTables()
		if err != nil {
			return err
		}
		if len(tables) == 0 {
			cmd.Println("No tables")
			return nil
		}
		for _, t := range tables {
			cmd.Printf("%s\t%s\t%s\n", t.Name(), t.ID, t.CreatedAt.Format(time.RFC3339))
		}
		return nil
	},
}

var tableDropCmd = &cobra.Command{
	Use:   "drop <name>",
	Short: "Drop a table and its files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := container.Catalog()
		if err != nil {
			return err
		}

		if err := cat.DropTable(args[0]); err != nil {
			return err
		}
		cmd.Printf("Dropped table '%s'\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tableCmd)
	tableCmd.AddCommand(tableCreateCmd, tableListCmd, tableDropCmd)
}

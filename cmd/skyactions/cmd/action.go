/*
Copyright © 2025 skyactions authors
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/skyactions/pkg/table"
)

// actionCmd groups the action registry commands
var actionCmd = &cobra.Command{
	Use:   "action",
	Short: "Manage the actions of a table",
}

var actionAddCmd = &cobra.Command{
	Use:   "add <table> <name>",
	Short: "Add an action to a table",
	Long: `Add an action to a table's registry and save it.

The action receives the next identifier after the last stored action.

Example:
  skyactions action add events purchase`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTable(args[0], func(t *table.Table) error {
			a, err := t.AddAction(args[1])
			if err != nil {
				return err
			}
			cmd.Printf("Added action '%s' with id %d to table '%s'\n", a.Name, a.ID, t.Name())
			return nil
		})
	},
}

var actionListCmd = &cobra.Command{
	Use:   "list <table>",
	Short: "List the actions of a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTable(args[0], func(t *table.Table) error {
			for _, a := range t.Actions().Actions() {
				cmd.Printf("%d\t%s\n", a.ID, a.Name)
			}
			return nil
		})
	},
}

var actionFindCmd = &cobra.Command{
	Use:   "find <table> <name>",
	Short: "Look up an action by name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTable(args[0], func(t *table.Table) error {
			a, err := t.Actions().FindByName(args[1])
			if err != nil {
				return err
			}
			if a == nil {
				return fmt.Errorf("action '%s' not found in table '%s'", args[1], t.Name())
			}
			cmd.Printf("%d\t%s\n", a.ID, a.Name)
			return nil
		})
	},
}

// withTable opens the named table, runs fn and releases the table.
func withTable(name string, fn func(*table.Table) error) error {
	cat, err := container.Catalog()
	if err != nil {
		return err
	}

	t, err := cat.OpenTable(name)
	if err != nil {
		return err
	}
	defer t.Close()

	return fn(t)
}

func init() {
	rootCmd.AddCommand(actionCmd)
	actionCmd.AddCommand(actionAddCmd, actionListCmd, actionFindCmd)
}

package main

import (
	"fmt"

	"flex-design-backend/internal/database"

	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Manage DynamoDB tables",
}

var tablesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create every table and index the servers use; existing tables are left alone",
	RunE:  runTablesCreate,
}

func init() {
	tablesCmd.AddCommand(tablesCreateCmd)
}

func runTablesCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	tk, err := newToolkit(ctx)
	if err != nil {
		return err
	}
	defer tk.log.Sync()

	for _, spec := range database.Tables {
		created, err := tk.db.Client.CreateTable(ctx, spec)
		if err != nil {
			return err
		}
		if created {
			tk.log.Info("Table created", "table", spec.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "created  %s\n", spec.Name)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "exists   %s\n", spec.Name)
		}
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/ethaccount/dats/src/app"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Manage the operation history schema in DB_URL",
	}

	migrateUpCmd = &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := app.NewMigrationConfig()
			if err != nil {
				return err
			}
			if err := app.MigrationUp(config.DSN, config.MigrationPath); err != nil {
				return err
			}
			return printMigrationVersion(cmd, config)
		},
	}

	migrateDownCmd = &cobra.Command{
		Use:   "down",
		Short: "Revert all migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := app.NewMigrationConfig()
			if err != nil {
				return err
			}
			if err := app.MigrationDown(config.DSN, config.MigrationPath); err != nil {
				return err
			}
			return printMigrationVersion(cmd, config)
		},
	}

	migrateVersionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := app.NewMigrationConfig()
			if err != nil {
				return err
			}
			return printMigrationVersion(cmd, config)
		},
	}
)

func printMigrationVersion(cmd *cobra.Command, config *app.MigrationConfig) error {
	version, dirty, err := app.MigrationVersion(config.DSN, config.MigrationPath)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty: %t)\n", version, dirty)
	return err
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
	rootCmd.AddCommand(migrateCmd)
}

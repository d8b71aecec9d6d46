package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shopfloor/toolcrib/internal/catalog"
	"github.com/shopfloor/toolcrib/internal/db"
)

func newMigrateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Runs GORM auto-migration against the configured database: the Stamps,
Parts_Compatibility and Drawings tables plus one table per part category.

Safe to run multiple times (idempotent).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.OutOrStdout(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "toolcrib.yaml", "path to config file")
	return cmd
}

func runMigrate(out io.Writer, configPath string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Migrating schema...")
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	fmt.Fprintf(out, "Category tables: %s\n", strings.Join(catalog.TableNames(), ", "))
	fmt.Fprintln(out, "Migration complete.")
	return nil
}

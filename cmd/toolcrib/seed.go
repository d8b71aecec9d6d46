package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shopfloor/toolcrib/internal/db"
)

func newSeedCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert stamps from the config file",
		Long: `Inserts every stamp declared in the config file into the database.
Stamps that already exist (by name) are left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.OutOrStdout(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "toolcrib.yaml", "path to config file")
	return cmd
}

func runSeed(out io.Writer, configPath string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	if err := db.SeedStamps(gormDB, cfg.Stamps); err != nil {
		return err
	}

	fmt.Fprintf(out, "Seeded %d stamp(s).\n", len(cfg.Stamps))
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shopfloor/toolcrib/internal/dashboard"
)

func newDashboardCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Start the read-only web dashboard",
		Long:  "Serves a read-only JSON view of stamps, low stock and drawings over HTTP.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, configPath, addr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "toolcrib.yaml", "path to config file")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides config)")
	return cmd
}

func runDashboard(cmd *cobra.Command, configPath, addr string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Dashboard.Addr
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	return dashboard.Start(ctx, dashboard.StartOpts{
		DB:                gormDB,
		Addr:              addr,
		LowStockThreshold: cfg.Digest.Threshold,
		Out:               cmd.OutOrStdout(),
	})
}

package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/shopfloor/toolcrib/internal/bot"
	"github.com/shopfloor/toolcrib/internal/catalog"
)

func newBalanceCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "balance <stamp> <category>",
		Short: "Print a balance report without the bot",
		Long: `Prints the same balance report the bot sends in chat, for one stamp
and one category. Category keys: punches, inserts, knives, cams,
discparts, pushers, stampparts.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBalance(cmd.OutOrStdout(), configPath, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "toolcrib.yaml", "path to config file")
	return cmd
}

func runBalance(out io.Writer, configPath, stampName, categoryKey string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	d, ok := catalog.ByKey(categoryKey)
	if !ok {
		return fmt.Errorf("balance: unknown category %q", categoryKey)
	}

	store, err := catalog.NewStore(catalog.StoreOpts{
		DB:          gormDB,
		MaxQuantity: cfg.Limits.MaxQuantity,
	})
	if err != nil {
		return err
	}

	stamp, err := store.StampByName(stampName)
	if err != nil {
		return err
	}
	parts, err := store.ListByStamp(d, stamp.ID)
	if err != nil {
		return err
	}

	offset := time.Duration(cfg.Report.ClockOffsetHours) * time.Hour
	report := bot.FormatBalance(d, stamp.Name, parts, offset)

	if w := terminalWidth(); w > 0 {
		rule := strings.Repeat("-", w)
		fmt.Fprintln(out, rule)
		fmt.Fprintln(out, report)
		fmt.Fprintln(out, rule)
		return nil
	}
	fmt.Fprintln(out, report)
	return nil
}

// terminalWidth returns the width of the attached terminal, or 0 when
// stdout is not a terminal (piped output stays clean).
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return 0
	}
	if w > 80 {
		w = 80
	}
	return w
}

package main

import (
	"fmt"

	"github.com/marketdev/internal/config"
	"github.com/marketdev/internal/db"
	"github.com/marketdev/internal/logging"
	"github.com/marketdev/internal/seed"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a demo site with tiers and template pages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		logger := logging.New(cfg.LogLevel, "console")
		if err := db.Init(cfg.DatabasePath); err != nil {
			return err
		}
		summary, err := seed.Demo(db.DB, logger)
		if err != nil {
			return err
		}
		if summary.Skipped {
			fmt.Fprintf(cmd.OutOrStdout(), "demo site %q already exists\n", seed.DemoSubdomain)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s.%s with %d pages and %d tiers\n",
			seed.DemoSubdomain, cfg.RootDomain, summary.Pages, summary.Tiers)
		return nil
	},
}

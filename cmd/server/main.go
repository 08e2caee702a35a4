package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "marketdev",
	Short:         "market.dev storefront server and page tools",
	SilenceUsage:  true,
}

func init() {
	rootCmd.AddCommand(serveCmd, renderCmd, watchCmd, initUserCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

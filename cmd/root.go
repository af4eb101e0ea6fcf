// Package cmd defines and implements the CLI commands for the
// crawlsched executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawlsched",
		Short: "Frontier-driven crawl scheduler",
		Long: `crawlsched sits between a URL-prioritization frontier and a
concurrent downloader: it admits discovered and redirected requests,
keeps the downloader saturated without exceeding its concurrency
budget, and reports crawl outcomes back to the frontier.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.AddCommand(newRunCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

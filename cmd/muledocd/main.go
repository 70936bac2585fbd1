// Muledocd serves MuleSoft documentation data over the Model Context
// Protocol.
//
// It scrapes the vendor documentation on demand and exposes runtime
// version listings, DataWeave and connector compatibility matrices,
// and release-notes drilldowns as MCP tools, either on stdio for
// editor clients or as a streamable HTTP daemon.
//
// Usage:
//
//	# stdio MCP server (what MCP client configs invoke)
//	muledocd
//
//	# HTTP daemon with /mcp, /healthz, /metrics
//	muledocd serve
//
//	# one-shot scrape to stdout
//	muledocd scrape latest
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// configPath is the --config flag value, empty for the default path.
var configPath string

var rootCmd = &cobra.Command{
	Use:   "muledocd",
	Short: "MCP server for MuleSoft documentation data",
	Long: `muledocd scrapes MuleSoft documentation on demand and serves runtime
versions, DataWeave compatibility, and connector compatibility over the
Model Context Protocol.

Without a subcommand it runs the stdio MCP server, which is what MCP
client configurations expect.`,
	RunE:         runStdio,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("muledocd\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default ~/.config/muledocd/config.yaml)")
	rootCmd.AddCommand(serveCmd, stdioCmd, scrapeCmd, versionCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <target> [artifact-id]",
	Short: "Scrape one documentation target and print JSON",
	Long: `Scrape one documentation target and print the result as JSON on stdout.

Targets:
  runtimes    every EDGE and LTS runtime version
  latest      the latest version per release channel
  dataweave   the DataWeave to runtime compatibility matrix
  connectors  the connector compatibility matrix, or one connector's
              releases when an artifact id is given
  java        the runtime to JDK support matrix

Examples:
  muledocd scrape latest
  muledocd scrape connectors http`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runScrape,
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	result, err := scrapeTarget(ctx, a, args)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// scrapeTarget runs the scrape operation named by the target argument.
func scrapeTarget(ctx context.Context, a *app, args []string) (any, error) {
	target := args[0]

	if len(args) == 2 && target != "connectors" {
		return nil, fmt.Errorf("target %q takes no artifact id", target)
	}

	switch target {
	case "runtimes":
		return a.scrape.RuntimeVersions(ctx)
	case "latest":
		return a.scrape.LatestVersions(ctx)
	case "dataweave":
		return a.scrape.DataWeaveMatrix(ctx)
	case "connectors":
		if len(args) == 2 {
			return a.scrape.LookupConnector(ctx, args[1])
		}
		return a.scrape.ConnectorMatrix(ctx)
	case "java":
		return a.scrape.JavaCompatibility(ctx)
	default:
		return nil, fmt.Errorf("unknown target %q (want runtimes, latest, dataweave, connectors, or java)", target)
	}
}

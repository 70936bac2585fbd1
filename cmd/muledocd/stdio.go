package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var stdioCmd = &cobra.Command{
	Use:   "stdio",
	Short: "Run the MCP server on stdio",
	Long: `Run the MCP server on standard input and output. This is the mode MCP
client configurations invoke; running muledocd without a subcommand
does the same thing.`,
	Args: cobra.NoArgs,
	RunE: runStdio,
}

func runStdio(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	mcpSrv, err := a.mcpServer()
	if err != nil {
		return fmt.Errorf("creating mcp server: %w", err)
	}

	a.logger.Info(ctx, "starting stdio MCP server", zap.String("version", version))

	// Protocol traffic owns stdout; the startup note goes to stderr.
	fmt.Fprintln(os.Stderr, "muledocd stdio MCP server started")

	if err := mcpSrv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}

	a.logger.Info(ctx, "stdio MCP server shutdown complete")
	return nil
}

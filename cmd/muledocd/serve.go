package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/muledocd/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP daemon",
	Long: `Run the HTTP daemon serving the streamable MCP endpoint at /mcp, a
liveness probe at /healthz, and Prometheus metrics at /metrics.

Examples:
  # Serve on the configured address (default 127.0.0.1:9001)
  muledocd serve

  # Serve on another port
  SERVER_HTTP_PORT=8080 muledocd serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
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

	httpSrv, err := server.NewServer(a.cfg.Server, mcpSrv.HTTPHandler(), a.logger.Underlying().Named("http"))
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}

	a.logger.Info(ctx, "starting muledocd daemon",
		zap.String("addr", a.cfg.Server.Address()),
		zap.String("version", version))

	if err := httpSrv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}

	a.logger.Info(ctx, "daemon shutdown complete")
	return nil
}

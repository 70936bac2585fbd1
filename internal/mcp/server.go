// Package mcp exposes the documentation scraper as an MCP server.
//
// The server registers one tool per scrape operation plus the guided
// prompts, and serves them over the stdio transport for editor clients
// or as a streamable HTTP handler mounted by the daemon. Tool calls
// are instrumented with OTel metrics.
package mcp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/muledocd/internal/scrape"
)

// Server wires the scrape service into the MCP protocol.
type Server struct {
	mcp     *mcp.Server
	scrape  *scrape.Service
	metrics *Metrics
	logger  *zap.Logger
}

// Config configures the MCP server.
type Config struct {
	// Name is the server implementation name (default: "muledocd").
	Name string

	// Version is the server version (default: "dev").
	Version string

	// Logger for structured logging.
	Logger *zap.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:    "muledocd",
		Version: "dev",
		Logger:  zap.NewNop(),
	}
}

// NewServer creates an MCP server over the given scrape service.
func NewServer(cfg *Config, scrapeSvc *scrape.Service) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if scrapeSvc == nil {
		return nil, fmt.Errorf("scrape service is required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		},
		nil,
	)

	s := &Server{
		mcp:     mcpServer,
		scrape:  scrapeSvc,
		metrics: NewMetrics(cfg.Logger),
		logger:  cfg.Logger,
	}

	s.registerTools()
	s.registerPrompts()

	return s, nil
}

// Run serves MCP on the stdio transport until the context is canceled
// or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio transport")
	transport := &mcp.StdioTransport{}
	if err := s.mcp.Run(ctx, transport); err != nil {
		return fmt.Errorf("server run failed: %w", err)
	}
	return nil
}

// HTTPHandler returns the streamable HTTP handler for mounting under
// the daemon's /mcp route. Every request is served by the same
// underlying server.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil)
}

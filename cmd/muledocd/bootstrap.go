package main

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/muledocd/internal/config"
	"github.com/fyrsmithlabs/muledocd/internal/fetch"
	"github.com/fyrsmithlabs/muledocd/internal/logging"
	"github.com/fyrsmithlabs/muledocd/internal/mcp"
	"github.com/fyrsmithlabs/muledocd/internal/scrape"
	"github.com/fyrsmithlabs/muledocd/internal/telemetry"
)

// app is the wired service graph for one invocation.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	tel    *telemetry.Telemetry
	scrape *scrape.Service
}

// newApp loads configuration and builds the logger, telemetry
// providers, fetch client, and scrape service.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	tel, err := telemetry.New(ctx, telemetryConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	client, err := fetch.NewClient(&fetch.Config{
		Timeout:   cfg.Docs.FetchTimeout.Duration(),
		UserAgent: cfg.Docs.UserAgent,
		Accept:    cfg.Docs.Accept,
	})
	if err != nil {
		return nil, fmt.Errorf("creating fetch client: %w", err)
	}

	svc, err := scrape.NewService(client, cfg.Docs, logger.Underlying().Named("scrape"))
	if err != nil {
		return nil, fmt.Errorf("creating scrape service: %w", err)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		tel:    tel,
		scrape: svc,
	}, nil
}

// mcpServer builds the MCP protocol server over the scrape service.
func (a *app) mcpServer() (*mcp.Server, error) {
	return mcp.NewServer(&mcp.Config{
		Name:    "muledocd",
		Version: version,
		Logger:  a.logger.Underlying().Named("mcp"),
	}, a.scrape)
}

// Close flushes telemetry and logs. Safe to call on a partially built
// app.
func (a *app) Close(ctx context.Context) {
	if a.tel != nil {
		_ = a.tel.Shutdown(ctx)
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// newLogger maps the app config onto the logging package config.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	logCfg := logging.NewDefaultConfig()
	level, err := logging.LevelFromString(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
	}
	logCfg.Level = level
	logCfg.Format = cfg.Logging.Format

	return logging.NewLogger(logCfg, nil)
}

// telemetryConfig maps the app config onto the telemetry package
// config. Export stays off unless enabled explicitly, so the daemon
// runs without a collector.
func telemetryConfig(cfg *config.Config) *telemetry.Config {
	telCfg := telemetry.NewDefaultConfig()
	telCfg.Enabled = cfg.Telemetry.Enabled
	telCfg.Endpoint = cfg.Telemetry.Endpoint
	telCfg.Protocol = cfg.Telemetry.Protocol
	telCfg.ServiceName = cfg.Telemetry.ServiceName
	telCfg.ServiceVersion = version
	if cfg.Telemetry.ServiceVersion != "" {
		telCfg.ServiceVersion = cfg.Telemetry.ServiceVersion
	}
	telCfg.Insecure = cfg.Telemetry.Insecure
	telCfg.Sampling.Rate = cfg.Telemetry.SampleRate
	return telCfg
}

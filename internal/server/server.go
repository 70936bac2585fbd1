// Package server hosts the muledocd HTTP daemon.
//
// The daemon mounts the streamable MCP endpoint at /mcp next to a
// liveness probe and a Prometheus scrape endpoint, with context-driven
// graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/muledocd/internal/config"
)

// Server is the HTTP host for the MCP endpoint.
type Server struct {
	echo   *echo.Echo
	cfg    config.ServerConfig
	logger *zap.Logger
}

// NewServer creates the HTTP host. mcpHandler serves the streamable
// MCP protocol and is mounted at /mcp.
func NewServer(cfg config.ServerConfig, mcpHandler http.Handler, logger *zap.Logger) (*Server, error) {
	if mcpHandler == nil {
		return nil, errors.New("mcp handler is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required for request tracking")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	s := &Server{
		echo:   e,
		cfg:    cfg,
		logger: logger,
	}
	s.registerRoutes(mcpHandler)

	return s, nil
}

// requestLogger logs one line per completed request.
func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	}
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes(mcpHandler http.Handler) {
	s.echo.GET("/healthz", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// The streamable MCP transport uses POST for calls, GET for the
	// event stream, and DELETE for session teardown.
	s.echo.Any("/mcp", echo.WrapHandler(mcpHandler))
}

// HealthResponse is the response body for GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// handleHealth handles GET /healthz requests.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: "muledocd",
	})
}

// Start starts the HTTP server and blocks until the context is
// canceled or the listener fails. On cancellation the server drains
// in-flight requests for at most the configured shutdown timeout.
//
// Returns http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	addr := s.cfg.Address()
	errCh := make(chan error, 1)

	go func() {
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server start: %w", err)
		}
	}()

	s.logger.Info("http server listening",
		zap.String("addr", addr),
		zap.String("mcp_endpoint", "/mcp"))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			s.cfg.ShutdownTimeout.Duration(),
		)
		defer cancel()

		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}

		s.logger.Info("http server stopped")
		return http.ErrServerClosed
	}
}

// Echo returns the underlying router for registering additional routes.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

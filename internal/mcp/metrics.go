package mcp

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/muledocd/internal/fetch"
	"github.com/fyrsmithlabs/muledocd/internal/markup"
	"github.com/fyrsmithlabs/muledocd/internal/scrape"
)

const instrumentationName = "github.com/fyrsmithlabs/muledocd/internal/mcp"

// Metrics provides OpenTelemetry instrumentation for MCP tool
// invocations.
type Metrics struct {
	meter  metric.Meter
	logger *zap.Logger

	invocations    metric.Int64Counter
	duration       metric.Float64Histogram
	errors         metric.Int64Counter
	activeRequests metric.Int64UpDownCounter
}

// NewMetrics creates tool invocation metrics. Instrument creation
// failures are logged and the affected instrument stays nil; recording
// skips nil instruments rather than failing the call.
func NewMetrics(logger *zap.Logger) *Metrics {
	m := &Metrics{
		meter:  otel.Meter(instrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.invocations, err = m.meter.Int64Counter(
		"muledocd.mcp.tool.invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
	)
	if err != nil {
		m.logger.Warn("failed to create invocations counter", zap.Error(err))
	}

	m.duration, err = m.meter.Float64Histogram(
		"muledocd.mcp.tool.duration_seconds",
		metric.WithDescription("Duration of MCP tool invocations in seconds"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0),
	)
	if err != nil {
		m.logger.Warn("failed to create duration histogram", zap.Error(err))
	}

	m.errors, err = m.meter.Int64Counter(
		"muledocd.mcp.tool.errors_total",
		metric.WithDescription("Total number of failed MCP tool invocations"),
	)
	if err != nil {
		m.logger.Warn("failed to create errors counter", zap.Error(err))
	}

	m.activeRequests, err = m.meter.Int64UpDownCounter(
		"muledocd.mcp.tool.active_requests",
		metric.WithDescription("Number of MCP tool invocations currently in flight"),
	)
	if err != nil {
		m.logger.Warn("failed to create active requests counter", zap.Error(err))
	}
}

// RecordInvocation records metrics for a completed tool invocation.
func (m *Metrics) RecordInvocation(ctx context.Context, tool string, elapsed time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("tool", tool),
		attribute.Bool("success", err == nil),
	}

	if m.invocations != nil {
		m.invocations.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if m.duration != nil {
		m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
	}
	if err != nil && m.errors != nil {
		m.errors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("tool", tool),
			attribute.String("error_type", categorizeError(err)),
		))
	}
}

// IncrementActive marks one tool invocation in flight.
func (m *Metrics) IncrementActive(ctx context.Context, tool string) {
	if m.activeRequests != nil {
		m.activeRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("tool", tool)))
	}
}

// DecrementActive marks one tool invocation finished.
func (m *Metrics) DecrementActive(ctx context.Context, tool string) {
	if m.activeRequests != nil {
		m.activeRequests.Add(ctx, -1, metric.WithAttributes(attribute.String("tool", tool)))
	}
}

// categorizeError maps an invocation failure to a bounded error_type
// label. Typed errors from the scrape pipeline carry the category;
// anything unrecognized lands in internal_error so the label set stays
// small.
func categorizeError(err error) string {
	var ferr *fetch.Error
	if errors.As(err, &ferr) {
		switch ferr.Kind {
		case fetch.KindTimeout:
			return "timeout"
		case fetch.KindHTTPStatus:
			return "http_status"
		case fetch.KindConnection:
			return "connection"
		}
	}

	var perr *markup.ParseError
	if errors.As(err, &perr) {
		return "malformed_input"
	}

	if errors.Is(err, scrape.ErrConnectorNotFound) {
		return "not_found"
	}
	if strings.Contains(err.Error(), "required") {
		return "validation_error"
	}
	return "internal_error"
}

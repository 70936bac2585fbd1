package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/muledocd/internal/fetch"
	"github.com/fyrsmithlabs/muledocd/internal/markup"
	"github.com/fyrsmithlabs/muledocd/internal/scrape"
)

// newTestMetrics installs a manual-reader meter provider globally so
// recorded values can be collected and inspected.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	return NewMetrics(zap.NewNop()), reader
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestMetricsRecordInvocation(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordInvocation(ctx, "get_mulesoft_runtime_versions", 25*time.Millisecond, nil)
	m.RecordInvocation(ctx, "get_mulesoft_runtime_versions", 10*time.Millisecond, errors.New("boom"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	invocations, ok := findMetric(rm, "muledocd.mcp.tool.invocations_total")
	require.True(t, ok, "invocations counter must be registered")
	sum, ok := invocations.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	errs, ok := findMetric(rm, "muledocd.mcp.tool.errors_total")
	require.True(t, ok, "errors counter must be registered")
	errSum, ok := errs.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, errSum.DataPoints, 1, "only the failed invocation counts as an error")
	assert.Equal(t, int64(1), errSum.DataPoints[0].Value)

	_, ok = findMetric(rm, "muledocd.mcp.tool.duration_seconds")
	assert.True(t, ok, "duration histogram must be registered")
}

func TestMetricsActiveRequests(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.IncrementActive(ctx, "get_dataweave_versions")
	m.IncrementActive(ctx, "get_dataweave_versions")
	m.DecrementActive(ctx, "get_dataweave_versions")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	active, ok := findMetric(rm, "muledocd.mcp.tool.active_requests")
	require.True(t, ok)
	sum, ok := active.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
}

func TestCategorizeError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", &fetch.Error{Kind: fetch.KindTimeout, URL: "u"}, "timeout"},
		{"http status", &fetch.Error{Kind: fetch.KindHTTPStatus, URL: "u", Status: 503}, "http_status"},
		{"connection", &fetch.Error{Kind: fetch.KindConnection, URL: "u"}, "connection"},
		{"wrapped fetch error", fmt.Errorf("runtime versions scrape failed: %w", &fetch.Error{Kind: fetch.KindHTTPStatus, URL: "u", Status: 500}), "http_status"},
		{"malformed input", &markup.ParseError{Kind: markup.KindMalformedInput, Reason: "empty document"}, "malformed_input"},
		{"connector not found", fmt.Errorf("connector lookup failed: %w", scrape.ErrConnectorNotFound), "not_found"},
		{"validation", errors.New("artifact id is required"), "validation_error"},
		{"unknown", errors.New("boom"), "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, categorizeError(tc.err))
		})
	}
}

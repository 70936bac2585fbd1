package scrape

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fyrsmithlabs/muledocd/internal/config"
	"github.com/fyrsmithlabs/muledocd/internal/fetch"
	"github.com/fyrsmithlabs/muledocd/internal/markup"
	"github.com/fyrsmithlabs/muledocd/internal/version"
)

const runtimePage = `<html><body>
<h2>Mule Runtime Release Cadence</h2>
<table>
  <tr><th>Version</th><th>Release date</th><th>Java support</th></tr>
  <tr><td>4.3.0 LTS</td><td>Oct 2023</td><td>8 and 11</td></tr>
  <tr><td>4.4.0 EDGE</td><td>Feb 2024</td><td>8, 11, and 17</td></tr>
  <tr><td>4.4.1 EDGE</td><td>Jun 2024</td><td>17</td></tr>
</table>
<table>
  <tr><td>9.9.9</td><td>two columns only</td></tr>
</table>
</body></html>`

const dataweavePage = `<html><body>
<h2>DataWeave Compatibility</h2>
<table>
  <tr><th>Mule Runtime</th><th>DataWeave</th></tr>
  <tr><td>4.6.0</td><td>2.7.0</td></tr>
  <tr><td>4.5.0</td><td>2.6.0</td></tr>
  <tr><td>See notes</td><td>n/a</td></tr>
</table>
<table>
  <tr><th>Other</th><th>Data</th></tr>
  <tr><td>ignored</td><td>1.2.3</td></tr>
</table>
</body></html>`

const connectorsPage = `<html><body>
<table>
  <tr><th>Connector</th><th>Supported Mule versions</th></tr>
  <tr><td>HTTP Connector</td><td>4.3.0 and later</td></tr>
  <tr><td>Salesforce</td><td>4.6.0</td></tr>
  <tr><td>ConnectorX</td><td></td></tr>
</table>
<table>
  <tr><th>Connector</th><th>Supported Mule versions</th></tr>
  <tr><td>HTTP Connector</td><td>4.6.0</td></tr>
</table>
</body></html>`

// htmlPage serves a static fixture body.
func htmlPage(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, body)
	}
}

// newTestService points a real client at a fixture server.
func newTestService(t *testing.T, mux http.Handler) (*Service, *httptest.Server) {
	t.Helper()

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	client, err := fetch.NewClient(&fetch.Config{
		Timeout:   5 * time.Second,
		UserAgent: "muledocd-test",
	})
	require.NoError(t, err)

	docs := config.DocsConfig{
		RuntimeReleasesURL:            ts.URL + "/runtime",
		JavaSupportURL:                ts.URL + "/java",
		DataWeaveURL:                  ts.URL + "/dataweave",
		ConnectorsURL:                 ts.URL + "/connectors/",
		ConnectorReleaseNotesURL:      ts.URL + "/connectors/introduction/connector-release-notes",
		DataWeaveReleaseNotesTemplate: ts.URL + "/release-notes/dataweave/dataweave-{version}-release-notes",
	}

	svc, err := NewService(client, docs, zaptest.NewLogger(t))
	require.NoError(t, err)
	return svc, ts
}

func TestNewService(t *testing.T) {
	client, err := fetch.NewClient(fetch.NewDefaultConfig())
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		svc, err := NewService(client, config.DocsConfig{}, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("nil fetcher", func(t *testing.T) {
		_, err := NewService(nil, config.DocsConfig{}, zaptest.NewLogger(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fetcher is required")
	})

	t.Run("nil logger", func(t *testing.T) {
		_, err := NewService(client, config.DocsConfig{}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "logger is required")
	})
}

func TestService_RuntimeVersions(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/runtime", htmlPage(runtimePage))
	svc, _ := newTestService(t, mux)

	records, err := svc.RuntimeVersions(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, version.Record{Channel: version.ChannelLTS, Key: version.Key{4, 3, 0}, Raw: "4.3.0 LTS"}, records[0])
	assert.Equal(t, version.ChannelEdge, records[1].Channel)
	assert.Equal(t, version.Key{4, 4, 1}, records[2].Key)

	for _, rec := range records {
		assert.NotEqual(t, "9.9.9", rec.Raw, "two-column table must not match the runtime landmark")
	}
}

func TestService_RuntimeVersions_NoTables(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/runtime", htmlPage(`<html><body><p>maintenance page</p></body></html>`))
	svc, _ := newTestService(t, mux)

	records, err := svc.RuntimeVersions(context.Background())
	require.NoError(t, err, "a page without tables is a data condition, not a failure")
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestService_LatestVersions(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/runtime", htmlPage(runtimePage))
	svc, _ := newTestService(t, mux)

	latest, err := svc.LatestVersions(context.Background())
	require.NoError(t, err)
	require.Len(t, latest, 2)

	assert.Equal(t, "4.3.0 LTS", latest[version.ChannelLTS].Raw)
	assert.Equal(t, "4.4.1 EDGE", latest[version.ChannelEdge].Raw)
}

func TestService_LatestVersions_DuplicateKeepsFirst(t *testing.T) {
	page := `<html><body><table>
	  <tr><th>Version</th><th>Date</th><th>JDK</th></tr>
	  <tr><td>4.5.0 Edge (March)</td><td>Mar</td><td>17</td></tr>
	  <tr><td>4.5.0 Edge (repost)</td><td>Apr</td><td>17</td></tr>
	</table></body></html>`

	mux := http.NewServeMux()
	mux.Handle("/runtime", htmlPage(page))
	svc, _ := newTestService(t, mux)

	latest, err := svc.LatestVersions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4.5.0 Edge (March)", latest[version.ChannelEdge].Raw)
}

func TestService_LatestVersions_SingleChannel(t *testing.T) {
	page := `<html><body><table>
	  <tr><th>Version</th><th>Date</th><th>JDK</th></tr>
	  <tr><td>4.4.0 LTS</td><td>Oct</td><td>8</td></tr>
	</table></body></html>`

	mux := http.NewServeMux()
	mux.Handle("/runtime", htmlPage(page))
	svc, _ := newTestService(t, mux)

	latest, err := svc.LatestVersions(context.Background())
	require.NoError(t, err)
	require.Len(t, latest, 1, "absent channel is omitted, never null-filled")
	_, hasEdge := latest[version.ChannelEdge]
	assert.False(t, hasEdge)
}

func TestService_DataWeaveMatrix(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/dataweave", htmlPage(dataweavePage))
	svc, _ := newTestService(t, mux)

	m, err := svc.DataWeaveMatrix(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"4.6.0", "4.5.0"}, m.Subjects())

	row, ok := m.Get("4.6.0")
	require.True(t, ok)
	require.Len(t, row.CompatibleWith, 1)
	assert.Equal(t, version.Key{2, 7, 0}, row.CompatibleWith[0].Key)

	_, ok = m.Get("See notes")
	assert.False(t, ok, "rows with no classifiable cells are dropped")
	_, ok = m.Get("ignored")
	assert.False(t, ok, "tables without a mule/runtime header are not compatibility tables")
}

func TestService_ConnectorMatrix(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/connectors/", htmlPage(connectorsPage))
	svc, _ := newTestService(t, mux)

	m, err := svc.ConnectorMatrix(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"HTTP Connector", "Salesforce"}, m.Subjects())

	row, ok := m.Get("HTTP Connector")
	require.True(t, ok)
	require.Len(t, row.CompatibleWith, 2, "duplicate subject merges by append")
	assert.Equal(t, version.Key{4, 3, 0}, row.CompatibleWith[0].Key)
	assert.Equal(t, version.Key{4, 6, 0}, row.CompatibleWith[1].Key)

	_, ok = m.Get("ConnectorX")
	assert.False(t, ok, "a row with an empty version cell is dropped")
}

func TestService_HTTPStatusPropagates(t *testing.T) {
	unavailable := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	})
	svc, _ := newTestService(t, unavailable)
	ctx := context.Background()

	ops := map[string]func() error{
		"RuntimeVersions":       func() error { _, err := svc.RuntimeVersions(ctx); return err },
		"LatestVersions":        func() error { _, err := svc.LatestVersions(ctx); return err },
		"DataWeaveMatrix":       func() error { _, err := svc.DataWeaveMatrix(ctx); return err },
		"ConnectorMatrix":       func() error { _, err := svc.ConnectorMatrix(ctx); return err },
		"JavaCompatibility":     func() error { _, err := svc.JavaCompatibility(ctx); return err },
		"LookupConnector":       func() error { _, err := svc.LookupConnector(ctx, "http"); return err },
		"DataWeaveReleaseNotes": func() error { _, err := svc.DataWeaveReleaseNotes(ctx, "2.7"); return err },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			err := op()
			require.Error(t, err)
			assert.True(t, fetch.IsKind(err, fetch.KindHTTPStatus), "want HTTP_STATUS, got %v", err)

			var ferr *fetch.Error
			require.ErrorAs(t, err, &ferr, "fetch errors must propagate unchanged")
			assert.Equal(t, http.StatusServiceUnavailable, ferr.Status)
		})
	}
}

func TestService_MalformedPagePropagates(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/runtime", htmlPage(""))
	svc, _ := newTestService(t, mux)

	_, err := svc.RuntimeVersions(context.Background())
	require.Error(t, err)

	var perr *markup.ParseError
	require.ErrorAs(t, err, &perr, "parse errors must propagate unchanged")
	assert.Equal(t, markup.KindMalformedInput, perr.Kind)
}

func TestService_ConnectionErrorPropagates(t *testing.T) {
	mux := http.NewServeMux()
	svc, ts := newTestService(t, mux)
	ts.Close()

	_, err := svc.RuntimeVersions(context.Background())
	require.Error(t, err)
	assert.True(t, fetch.IsKind(err, fetch.KindConnection), "want CONNECTION, got %v", err)
}

func TestService_ContextCancellation(t *testing.T) {
	blocked := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	svc, _ := newTestService(t, blocked)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := svc.RuntimeVersions(ctx)
	require.Error(t, err)

	var ferr *fetch.Error
	assert.True(t, errors.As(err, &ferr))
}

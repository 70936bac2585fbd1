// Package scrape turns MuleSoft documentation pages into normalized
// version records and compatibility matrices.
//
// Every operation is a fresh scrape: fetch the page, parse it, locate
// tables by landmark, classify the cells. Nothing is cached between
// calls, so results always reflect what the vendor currently publishes.
// Fetch and parse failures propagate to the caller unchanged; a page
// that parses but yields no tables produces an empty result, not an
// error.
package scrape

import (
	"context"
	"errors"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/muledocd/internal/config"
	"github.com/fyrsmithlabs/muledocd/internal/fetch"
	"github.com/fyrsmithlabs/muledocd/internal/markup"
	"github.com/fyrsmithlabs/muledocd/internal/matrix"
	"github.com/fyrsmithlabs/muledocd/internal/version"
)

var tracer = otel.Tracer("muledocd/scrape")

// Fetcher retrieves one documentation page. *fetch.Client satisfies it;
// tests substitute fixtures.
type Fetcher interface {
	Get(ctx context.Context, pageURL string, headers map[string]string) (*fetch.Page, error)
}

// Service scrapes the vendor documentation on demand. It holds no
// mutable state and is safe for concurrent use.
type Service struct {
	fetcher Fetcher
	docs    config.DocsConfig
	logger  *zap.Logger
	tracer  trace.Tracer
}

// NewService creates the documentation scraping service.
func NewService(fetcher Fetcher, docs config.DocsConfig, logger *zap.Logger) (*Service, error) {
	if fetcher == nil {
		return nil, errors.New("fetcher is required for scrape service")
	}
	if logger == nil {
		return nil, errors.New("logger is required for scrape service")
	}

	return &Service{
		fetcher: fetcher,
		docs:    docs,
		logger:  logger,
		tracer:  tracer,
	}, nil
}

// RuntimeVersions scrapes the release cadence page and returns every
// version token found in the runtime tables, in document order. Both
// channels are included, as are tokens carrying no channel marker.
func (s *Service) RuntimeVersions(ctx context.Context) ([]version.Record, error) {
	ctx, span := s.tracer.Start(ctx, "Service.RuntimeVersions")
	defer span.End()

	records, err := s.runtimeRecords(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.logger.Info("scraped runtime versions",
		zap.String("url", s.docs.RuntimeReleasesURL),
		zap.Int("count", len(records)))
	return records, nil
}

// LatestVersions returns the highest runtime version per release
// channel. Channels with no classified release are omitted from the
// map rather than filled with a placeholder.
func (s *Service) LatestVersions(ctx context.Context) (map[version.Channel]version.Record, error) {
	ctx, span := s.tracer.Start(ctx, "Service.LatestVersions")
	defer span.End()

	records, err := s.runtimeRecords(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	latest := version.Latest(records)
	s.logger.Info("selected latest runtime versions", zap.Int("channels", len(latest)))
	return latest, nil
}

// DataWeaveMatrix scrapes the DataWeave compatibility tables and
// returns a matrix keyed by runtime version. Rows where no DataWeave
// version classifies are dropped.
func (s *Service) DataWeaveMatrix(ctx context.Context) (*matrix.Matrix, error) {
	ctx, span := s.tracer.Start(ctx, "Service.DataWeaveMatrix")
	defer span.End()

	doc, err := s.fetchDocument(ctx, s.docs.DataWeaveURL)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	m := matrix.Build(markup.FindTables(doc, dataweaveTables))
	s.logger.Info("scraped dataweave compatibility",
		zap.String("url", s.docs.DataWeaveURL),
		zap.Int("runtimes", m.Len()))
	return m, nil
}

// ConnectorMatrix scrapes the connector landing page and returns a
// matrix keyed by connector name.
func (s *Service) ConnectorMatrix(ctx context.Context) (*matrix.Matrix, error) {
	ctx, span := s.tracer.Start(ctx, "Service.ConnectorMatrix")
	defer span.End()

	doc, err := s.fetchDocument(ctx, s.docs.ConnectorsURL)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	m := matrix.Build(markup.FindTables(doc, connectorTables))
	s.logger.Info("scraped connector compatibility",
		zap.String("url", s.docs.ConnectorsURL),
		zap.Int("connectors", m.Len()))
	return m, nil
}

// runtimeRecords fetches the release cadence page and classifies every
// cell of every runtime table row.
func (s *Service) runtimeRecords(ctx context.Context) ([]version.Record, error) {
	doc, err := s.fetchDocument(ctx, s.docs.RuntimeReleasesURL)
	if err != nil {
		return nil, err
	}

	// Empty slice, not nil, so "no versions" encodes as [] in JSON.
	records := []version.Record{}
	for _, table := range markup.FindTables(doc, runtimeTables) {
		for _, row := range table.Rows {
			for _, cell := range row {
				if rec := version.Classify(cell); rec != nil {
					records = append(records, *rec)
				}
			}
		}
	}
	return records, nil
}

// RuntimeReleasesURL returns the page RuntimeVersions and
// LatestVersions scrape.
func (s *Service) RuntimeReleasesURL() string { return s.docs.RuntimeReleasesURL }

// JavaSupportURL returns the page JavaCompatibility scrapes.
func (s *Service) JavaSupportURL() string { return s.docs.JavaSupportURL }

// DataWeaveURL returns the page DataWeaveMatrix scrapes.
func (s *Service) DataWeaveURL() string { return s.docs.DataWeaveURL }

// ConnectorsURL returns the page ConnectorMatrix scrapes.
func (s *Service) ConnectorsURL() string { return s.docs.ConnectorsURL }

// fetchDocument retrieves one page and parses it. Errors from either
// stage are returned unwrapped.
func (s *Service) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	ctx, span := s.tracer.Start(ctx, "Service.fetchDocument",
		trace.WithAttributes(attribute.String("page.url", pageURL)))
	defer span.End()

	page, err := s.fetcher.Get(ctx, pageURL, nil)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	doc, err := markup.Parse(page.Body)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return doc, nil
}

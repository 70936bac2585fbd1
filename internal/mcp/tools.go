package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fyrsmithlabs/muledocd/internal/matrix"
	"github.com/fyrsmithlabs/muledocd/internal/scrape"
	"github.com/fyrsmithlabs/muledocd/internal/version"
)

// registerTools registers one MCP tool per scrape operation.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_mulesoft_runtime_versions",
		Description: "Scrape MuleSoft documentation for every EDGE and LTS runtime version published on the release cadence page.",
	}, s.handleRuntimeVersions)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_latest_mulesoft_versions",
		Description: "Get only the latest EDGE and LTS MuleSoft runtime versions.",
	}, s.handleLatestVersions)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_dataweave_versions",
		Description: "Scrape MuleSoft documentation for the DataWeave to Mule runtime compatibility matrix.",
	}, s.handleDataWeaveVersions)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_connector_versions",
		Description: "Scrape MuleSoft documentation for Anypoint Connector compatibility. Pass artifact_id (for example http or salesforce) to drill into one connector's release notes; omit it for the full connector matrix.",
	}, s.handleConnectorVersions)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_java_compatibility",
		Description: "Scrape MuleSoft documentation for the Mule runtime to JDK support matrix.",
	}, s.handleJavaCompatibility)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_dataweave_release_notes",
		Description: "Scrape the release notes page for one DataWeave version: breaking changes, new features, and upgrade notes.",
	}, s.handleDataWeaveReleaseNotes)
}

// instrument wraps a tool invocation with the active-request gauge and
// the invocation metrics. Callers record the outcome through the
// returned func.
func (s *Server) instrument(ctx context.Context, tool string) func(error) {
	start := time.Now()
	s.metrics.IncrementActive(ctx, tool)
	return func(err error) {
		s.metrics.DecrementActive(ctx, tool)
		s.metrics.RecordInvocation(ctx, tool, time.Since(start), err)
	}
}

type runtimeVersionsInput struct{}

type runtimeVersionsOutput struct {
	Versions  []version.Record `json:"versions" jsonschema:"Every version found in the runtime tables, in document order"`
	Count     int              `json:"count" jsonschema:"Number of versions returned"`
	SourceURL string           `json:"source_url" jsonschema:"Page the versions were scraped from"`
}

func (s *Server) handleRuntimeVersions(ctx context.Context, req *mcp.CallToolRequest, args runtimeVersionsInput) (*mcp.CallToolResult, runtimeVersionsOutput, error) {
	done := s.instrument(ctx, "get_mulesoft_runtime_versions")
	var toolErr error
	defer func() { done(toolErr) }()

	records, err := s.scrape.RuntimeVersions(ctx)
	if err != nil {
		toolErr = fmt.Errorf("runtime versions scrape failed: %w", err)
		return nil, runtimeVersionsOutput{}, toolErr
	}

	out := runtimeVersionsOutput{
		Versions:  records,
		Count:     len(records),
		SourceURL: s.scrape.RuntimeReleasesURL(),
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Found %d runtime versions", out.Count)},
		},
	}, out, nil
}

type latestVersionsInput struct{}

type latestVersionsOutput struct {
	Latest    map[version.Channel]version.Record `json:"latest" jsonschema:"Highest version per release channel; channels with no release are omitted"`
	SourceURL string                             `json:"source_url" jsonschema:"Page the versions were scraped from"`
}

func (s *Server) handleLatestVersions(ctx context.Context, req *mcp.CallToolRequest, args latestVersionsInput) (*mcp.CallToolResult, latestVersionsOutput, error) {
	done := s.instrument(ctx, "get_latest_mulesoft_versions")
	var toolErr error
	defer func() { done(toolErr) }()

	latest, err := s.scrape.LatestVersions(ctx)
	if err != nil {
		toolErr = fmt.Errorf("latest versions scrape failed: %w", err)
		return nil, latestVersionsOutput{}, toolErr
	}

	out := latestVersionsOutput{
		Latest:    latest,
		SourceURL: s.scrape.RuntimeReleasesURL(),
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: summarizeLatest(latest)},
		},
	}, out, nil
}

// summarizeLatest renders the latest-version map as one line, stable
// channel order.
func summarizeLatest(latest map[version.Channel]version.Record) string {
	if len(latest) == 0 {
		return "No classified runtime versions found"
	}
	text := "Latest:"
	for _, ch := range []version.Channel{version.ChannelEdge, version.ChannelLTS} {
		if rec, ok := latest[ch]; ok {
			text += fmt.Sprintf(" %s=%s", ch, rec.Key)
		}
	}
	return text
}

type dataweaveVersionsInput struct{}

type dataweaveVersionsOutput struct {
	Compatibility []matrix.Row `json:"compatibility" jsonschema:"Runtime version to compatible DataWeave versions, in document order"`
	Count         int          `json:"count" jsonschema:"Number of runtime rows returned"`
	SourceURL     string       `json:"source_url" jsonschema:"Page the matrix was scraped from"`
}

func (s *Server) handleDataWeaveVersions(ctx context.Context, req *mcp.CallToolRequest, args dataweaveVersionsInput) (*mcp.CallToolResult, dataweaveVersionsOutput, error) {
	done := s.instrument(ctx, "get_dataweave_versions")
	var toolErr error
	defer func() { done(toolErr) }()

	m, err := s.scrape.DataWeaveMatrix(ctx)
	if err != nil {
		toolErr = fmt.Errorf("dataweave versions scrape failed: %w", err)
		return nil, dataweaveVersionsOutput{}, toolErr
	}

	out := dataweaveVersionsOutput{
		Compatibility: m.Rows(),
		Count:         m.Len(),
		SourceURL:     s.scrape.DataWeaveURL(),
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Found DataWeave compatibility for %d runtime versions", out.Count)},
		},
	}, out, nil
}

type connectorVersionsInput struct {
	ArtifactID string `json:"artifact_id,omitempty" jsonschema:"Connector artifact id, for example http or salesforce; when omitted the full connector matrix is returned"`
}

type connectorVersionsOutput struct {
	Compatibility []matrix.Row          `json:"compatibility,omitempty" jsonschema:"Connector name to compatible runtime versions; set when no artifact_id was given"`
	Connector     *scrape.ConnectorInfo `json:"connector,omitempty" jsonschema:"Release details for the requested connector; set when artifact_id was given"`
	SourceURL     string                `json:"source_url" jsonschema:"Page the data was scraped from"`
}

func (s *Server) handleConnectorVersions(ctx context.Context, req *mcp.CallToolRequest, args connectorVersionsInput) (*mcp.CallToolResult, connectorVersionsOutput, error) {
	done := s.instrument(ctx, "get_connector_versions")
	var toolErr error
	defer func() { done(toolErr) }()

	if args.ArtifactID != "" {
		info, err := s.scrape.LookupConnector(ctx, args.ArtifactID)
		if err != nil {
			toolErr = fmt.Errorf("connector lookup failed: %w", err)
			return nil, connectorVersionsOutput{}, toolErr
		}
		out := connectorVersionsOutput{
			Connector: info,
			SourceURL: info.URL,
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Found %d releases for %s", len(info.Releases), info.Name)},
			},
		}, out, nil
	}

	m, err := s.scrape.ConnectorMatrix(ctx)
	if err != nil {
		toolErr = fmt.Errorf("connector versions scrape failed: %w", err)
		return nil, connectorVersionsOutput{}, toolErr
	}

	out := connectorVersionsOutput{
		Compatibility: m.Rows(),
		SourceURL:     s.scrape.ConnectorsURL(),
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Found compatibility for %d connectors", m.Len())},
		},
	}, out, nil
}

type javaCompatibilityInput struct{}

type javaCompatibilityOutput struct {
	Runtimes  []scrape.JavaSupport `json:"runtimes" jsonschema:"Runtime to JDK support rows, in document order"`
	Count     int                  `json:"count" jsonschema:"Number of runtime rows returned"`
	SourceURL string               `json:"source_url" jsonschema:"Page the matrix was scraped from"`
}

func (s *Server) handleJavaCompatibility(ctx context.Context, req *mcp.CallToolRequest, args javaCompatibilityInput) (*mcp.CallToolResult, javaCompatibilityOutput, error) {
	done := s.instrument(ctx, "get_java_compatibility")
	var toolErr error
	defer func() { done(toolErr) }()

	entries, err := s.scrape.JavaCompatibility(ctx)
	if err != nil {
		toolErr = fmt.Errorf("java compatibility scrape failed: %w", err)
		return nil, javaCompatibilityOutput{}, toolErr
	}

	out := javaCompatibilityOutput{
		Runtimes:  entries,
		Count:     len(entries),
		SourceURL: s.scrape.JavaSupportURL(),
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Found JDK support for %d runtime versions", out.Count)},
		},
	}, out, nil
}

type dataweaveReleaseNotesInput struct {
	Version string `json:"version" jsonschema:"required,DataWeave version to look up, for example 2.7"`
}

type dataweaveReleaseNotesOutput struct {
	ReleaseNotes scrape.ReleaseNotes `json:"release_notes" jsonschema:"Breaking changes, new features, and upgrade notes for the version"`
}

func (s *Server) handleDataWeaveReleaseNotes(ctx context.Context, req *mcp.CallToolRequest, args dataweaveReleaseNotesInput) (*mcp.CallToolResult, dataweaveReleaseNotesOutput, error) {
	done := s.instrument(ctx, "get_dataweave_release_notes")
	var toolErr error
	defer func() { done(toolErr) }()

	notes, err := s.scrape.DataWeaveReleaseNotes(ctx, args.Version)
	if err != nil {
		toolErr = fmt.Errorf("dataweave release notes scrape failed: %w", err)
		return nil, dataweaveReleaseNotesOutput{}, toolErr
	}

	out := dataweaveReleaseNotesOutput{ReleaseNotes: *notes}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("DataWeave %s: %d breaking changes, %d new features",
				notes.Version, len(notes.BreakingChanges), len(notes.NewFeatures))},
		},
	}, out, nil
}

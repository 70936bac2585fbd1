package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/muledocd/internal/markup"
	"github.com/fyrsmithlabs/muledocd/internal/version"
)

// ErrConnectorNotFound reports an artifact id that matched no link on
// the connector release notes index.
var ErrConnectorNotFound = errors.New("connector not found in release notes index")

// unknownMuleVersion marks releases whose notes state no runtime
// requirement.
const unknownMuleVersion = "unknown"

// fallbackVersionLimit caps the number of versions taken from a raw
// page scan when a release notes page has no versioned headings.
const fallbackVersionLimit = 5

// ConnectorRelease is one release of a connector with the runtime and
// JDK requirements its release notes state.
type ConnectorRelease struct {
	Version         string `json:"connector_version"`
	MuleVersion     string `json:"mule_version"`
	JDKVersions     []int  `json:"jdk_versions"`
	ArtifactID      string `json:"artifact_id"`
	MavenArtifactID string `json:"maven_artifact_id"`
	ConnectorName   string `json:"connector_name"`
}

// ConnectorInfo is a connector resolved through the release notes
// index. Releases is empty when the notes page lists no recognizable
// versions.
type ConnectorInfo struct {
	ArtifactID string             `json:"artifact_id"`
	Name       string             `json:"connector_name"`
	URL        string             `json:"connector_url"`
	Releases   []ConnectorRelease `json:"releases"`
}

// LookupConnector resolves one connector through the release notes
// index: match the artifact id against link text, follow the link, and
// read the Software/Version tables and versioned headings on the
// connector's own release notes page.
func (s *Service) LookupConnector(ctx context.Context, artifactID string) (*ConnectorInfo, error) {
	ctx, span := s.tracer.Start(ctx, "Service.LookupConnector",
		trace.WithAttributes(attribute.String("connector.artifact_id", artifactID)))
	defer span.End()

	if strings.TrimSpace(artifactID) == "" {
		err := errors.New("artifact id is required")
		span.RecordError(err)
		return nil, err
	}

	index, err := s.fetchDocument(ctx, s.docs.ConnectorReleaseNotesURL)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	href, name, ok := findConnectorLink(index, artifactID)
	if !ok {
		err := fmt.Errorf("%w: %q", ErrConnectorNotFound, artifactID)
		span.RecordError(err)
		return nil, err
	}

	pageURL := s.resolveConnectorURL(href)
	s.logger.Debug("resolved connector link",
		zap.String("artifact_id", artifactID),
		zap.String("link_text", name),
		zap.String("url", pageURL))

	doc, err := s.fetchDocument(ctx, pageURL)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	connectorName := strings.TrimSpace(strings.ReplaceAll(name, " Release Notes", ""))
	info := &ConnectorInfo{
		ArtifactID: artifactID,
		Name:       connectorName,
		URL:        pageURL,
		Releases:   connectorReleases(doc, artifactID, connectorName),
	}

	s.logger.Info("scraped connector release notes",
		zap.String("artifact_id", artifactID),
		zap.String("url", pageURL),
		zap.Int("releases", len(info.Releases)))
	return info, nil
}

// findConnectorLink scans index links in document order for one whose
// text names the connector. The index titles its links
// "<Name> Connector Release Notes", so the artifact id is tried bare
// and with those suffixes.
func findConnectorLink(doc *goquery.Document, artifactID string) (href, text string, found bool) {
	variations := nameVariations(artifactID)

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		linkText := strings.TrimSpace(sel.Text())
		lower := strings.ToLower(linkText)
		stripped := strings.TrimSpace(strings.ReplaceAll(lower, " release notes", ""))
		for _, v := range variations {
			if strings.Contains(lower, v) || v == stripped {
				href, _ = sel.Attr("href")
				text = linkText
				found = true
				return false
			}
		}
		return true
	})
	return href, text, found
}

// nameVariations returns the lowercase link text candidates for an
// artifact id.
func nameVariations(artifactID string) []string {
	id := strings.ToLower(strings.TrimSpace(artifactID))
	return []string{id, id + " connector", id + " connector release notes"}
}

// resolveConnectorURL turns an index href into an absolute URL. The
// index mixes absolute, root-relative, and dot-dot relative links;
// dot-dot links resolve against the connectors section, not against
// the index page itself.
func (s *Service) resolveConnectorURL(href string) string {
	base := strings.TrimSuffix(s.docs.ConnectorsURL, "/") + "/"
	switch {
	case strings.HasPrefix(href, "../../"):
		if strings.Contains(href, "/release-notes/connector/") {
			return s.docsOrigin() + strings.TrimPrefix(href, "../..")
		}
		return base + strings.TrimPrefix(href, "../../")
	case strings.HasPrefix(href, "../"):
		return base + "introduction/" + strings.TrimPrefix(href, "../")
	case strings.HasPrefix(href, "/"):
		return s.docsOrigin() + href
	case strings.HasPrefix(href, "http"):
		return href
	default:
		return base + "introduction/" + href
	}
}

// docsOrigin returns the scheme and host of the connectors URL.
func (s *Service) docsOrigin() string {
	u, err := url.Parse(s.docs.ConnectorsURL)
	if err != nil {
		return strings.TrimSuffix(s.docs.ConnectorsURL, "/")
	}
	return u.Scheme + "://" + u.Host
}

// connectorReleases reads one connector's release notes page. Every
// versioned h2/h3/h4 heading becomes a release; the first
// Software/Version table supplies the runtime and JDK requirements,
// which the vendor repeats unchanged across releases.
func connectorReleases(doc *goquery.Document, artifactID, connectorName string) []ConnectorRelease {
	muleVersion, jdkVersions := compatibilityDefaults(doc)
	maven := "mule-" + artifactID + "-connector"

	releases := []ConnectorRelease{}
	doc.Find("h2, h3, h4").Each(func(_ int, sel *goquery.Selection) {
		run := version.Extract(strings.TrimSpace(sel.Text()))
		if run == "" {
			return
		}
		releases = append(releases, ConnectorRelease{
			Version:         run,
			MuleVersion:     muleVersion,
			JDKVersions:     jdkVersions,
			ArtifactID:      artifactID,
			MavenArtifactID: maven,
			ConnectorName:   connectorName,
		})
	})
	if len(releases) > 0 {
		return releases
	}

	// No versioned headings. Scan the whole page text for version runs
	// and keep the first few.
	for _, run := range version.ExtractAll(doc.Text()) {
		if len(releases) == fallbackVersionLimit {
			break
		}
		releases = append(releases, ConnectorRelease{
			Version:         run,
			MuleVersion:     unknownMuleVersion,
			JDKVersions:     []int{},
			ArtifactID:      artifactID,
			MavenArtifactID: maven,
			ConnectorName:   connectorName,
		})
	}
	return releases
}

// compatibilityDefaults reads the first Software/Version table on the
// page. Rows label the runtime requirement "Mule" and the JDK
// requirement with a JDK or OpenJDK software name.
func compatibilityDefaults(doc *goquery.Document) (muleVersion string, jdkVersions []int) {
	muleVersion = unknownMuleVersion
	jdkVersions = []int{}

	tables := markup.FindTables(doc, connectorCompatTables)
	if len(tables) == 0 {
		return muleVersion, jdkVersions
	}

	for _, row := range tables[0].Rows {
		if len(row) < 2 {
			continue
		}
		switch software := row[0]; {
		case software == "Mule":
			muleVersion = row[1]
		case strings.Contains(software, "OpenJDK"), strings.Contains(software, "JDK"):
			if jdk := version.ParseJDKList(row[1]); jdk != nil {
				jdkVersions = jdk
			}
		}
	}
	return muleVersion, jdkVersions
}

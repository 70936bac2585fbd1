package scrape

import (
	"context"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ReleaseNotes summarizes one DataWeave release notes page.
type ReleaseNotes struct {
	Version         string   `json:"version"`
	URL             string   `json:"release_notes_url"`
	BreakingChanges []string `json:"breaking_changes"`
	NewFeatures     []string `json:"new_features"`
	ImportantNotes  []string `json:"important_notes"`
}

// DataWeaveReleaseNotes scrapes the release notes page for one
// DataWeave version and pulls out breaking changes, new features, and
// upgrade notes.
func (s *Service) DataWeaveReleaseNotes(ctx context.Context, dwVersion string) (*ReleaseNotes, error) {
	ctx, span := s.tracer.Start(ctx, "Service.DataWeaveReleaseNotes",
		trace.WithAttributes(attribute.String("dataweave.version", dwVersion)))
	defer span.End()

	if strings.TrimSpace(dwVersion) == "" {
		err := errors.New("dataweave version is required")
		span.RecordError(err)
		return nil, err
	}

	pageURL := s.docs.DataWeaveReleaseNotesURL(dwVersion)
	doc, err := s.fetchDocument(ctx, pageURL)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	notes := extractReleaseNotes(doc)
	notes.Version = dwVersion
	notes.URL = pageURL

	s.logger.Info("scraped dataweave release notes",
		zap.String("version", dwVersion),
		zap.String("url", pageURL),
		zap.Int("breaking_changes", len(notes.BreakingChanges)))
	return notes, nil
}

// extractReleaseNotes walks the page headings and collects the content
// of the sections named for breaking changes, new features, and
// upgrade guidance. Each list is capped; release notes pages run long.
func extractReleaseNotes(doc *goquery.Document) *ReleaseNotes {
	notes := &ReleaseNotes{
		BreakingChanges: []string{},
		NewFeatures:     []string{},
		ImportantNotes:  []string{},
	}

	doc.Find("h2, h3, h4").Each(func(_ int, heading *goquery.Selection) {
		title := strings.ToLower(strings.TrimSpace(heading.Text()))
		switch {
		case strings.Contains(title, "breaking"):
			notes.BreakingChanges = append(notes.BreakingChanges, sectionContent(heading, 2)...)
		case strings.Contains(title, "what's new"), strings.Contains(title, "new features"):
			notes.NewFeatures = append(notes.NewFeatures, sectionContent(heading, 3)...)
		case strings.Contains(title, "important"), strings.Contains(title, "upgrade"):
			notes.ImportantNotes = append(notes.ImportantNotes, sectionContent(heading, 2)...)
		}
	})

	// Pages without a breaking changes section flag problems inline;
	// fall back to warning and deprecation paragraphs.
	if len(notes.BreakingChanges) == 0 {
		doc.Find("p").Each(func(_ int, p *goquery.Selection) {
			text := collapse(p.Text())
			lower := strings.ToLower(text)
			if strings.Contains(lower, "warning:") ||
				strings.Contains(lower, "caution:") ||
				strings.Contains(lower, "deprecated") {
				notes.BreakingChanges = append(notes.BreakingChanges, text)
			}
		})
	}

	notes.BreakingChanges = clip(notes.BreakingChanges, 3)
	notes.NewFeatures = clip(notes.NewFeatures, 5)
	notes.ImportantNotes = clip(notes.ImportantNotes, 3)
	return notes
}

// sectionContent collects the text of elements following a heading, up
// to the next heading, keeping at most limit entries.
func sectionContent(heading *goquery.Selection, limit int) []string {
	var content []string
	for sib := heading.Next(); sib.Length() > 0; sib = sib.Next() {
		switch goquery.NodeName(sib) {
		case "h2", "h3", "h4":
			return content
		}
		if text := collapse(sib.Text()); text != "" {
			content = append(content, text)
			if len(content) == limit {
				return content
			}
		}
	}
	return content
}

func clip(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// collapse trims text and collapses internal whitespace.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package scrape

import (
	"context"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/muledocd/internal/markup"
	"github.com/fyrsmithlabs/muledocd/internal/version"
)

// JavaSupport pairs one runtime release with the JDK majors it runs on.
type JavaSupport struct {
	Runtime string `json:"runtime_version"`
	JDK     []int  `json:"jdk_versions"`
}

// JavaCompatibility scrapes the Java support page and returns the
// runtime to JDK rows in document order. A runtime listed twice keeps
// its first position and takes the later row's JDK list.
func (s *Service) JavaCompatibility(ctx context.Context) ([]JavaSupport, error) {
	ctx, span := s.tracer.Start(ctx, "Service.JavaCompatibility")
	defer span.End()

	entries, err := s.javaEntries(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.logger.Info("scraped java compatibility",
		zap.String("url", s.docs.JavaSupportURL),
		zap.Int("runtimes", len(entries)))
	return entries, nil
}

// javaEntries keeps rows whose first cell reads as a version string.
// The JDK column is a prose enumeration ("8, 11, and 17"), so it goes
// through ParseJDKList rather than the version classifier.
func (s *Service) javaEntries(ctx context.Context) ([]JavaSupport, error) {
	doc, err := s.fetchDocument(ctx, s.docs.JavaSupportURL)
	if err != nil {
		return nil, err
	}

	entries := []JavaSupport{}
	index := map[string]int{}
	for _, table := range markup.FindTables(doc, javaTables) {
		for _, row := range table.Rows {
			if len(row) < 2 || !version.IsVersionString(row[0]) {
				continue
			}
			jdk := version.ParseJDKList(row[1])
			if jdk == nil {
				jdk = []int{}
			}
			if i, ok := index[row[0]]; ok {
				entries[i].JDK = jdk
				continue
			}
			index[row[0]] = len(entries)
			entries = append(entries, JavaSupport{Runtime: row[0], JDK: jdk})
		}
	}
	return entries, nil
}

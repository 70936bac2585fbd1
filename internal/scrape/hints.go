package scrape

import "github.com/fyrsmithlabs/muledocd/internal/markup"

// Landmarks locating the target tables on each vendor page. Hints
// describe structure rather than position, so a reordered or restyled
// page still matches.
var (
	// Release cadence rows carry version, release date, and JDK columns.
	runtimeTables = markup.Hint{MinColumns: 3}

	// The Java support matrix pairs a runtime version with its JDKs.
	javaTables = markup.Hint{MinColumns: 2}

	// DataWeave compatibility tables are headed by a Mule or runtime
	// column.
	dataweaveTables = markup.Hint{HeaderAny: []string{"mule", "runtime"}}

	// Connector listings pair a name with at least one version column.
	connectorTables = markup.Hint{MinColumns: 2}

	// Per-connector release notes carry Software/Version tables
	// describing what each release runs on.
	connectorCompatTables = markup.Hint{HeaderAll: []string{"software", "version"}}
)

package markup

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
)

// Hint identifies target tables by structural landmarks rather than
// fixed positions, so minor vendor reformatting does not break the
// scrape. All set fields must match; the zero Hint matches every table.
type Hint struct {
	// HeadingText matches tables that appear after a heading whose text
	// contains this string, case-insensitive, up to the next heading.
	HeadingText string

	// TableClass matches tables carrying this CSS class.
	TableClass string

	// HeaderAll matches tables only when every one of these strings
	// appears in some header cell, case-insensitive.
	HeaderAll []string

	// HeaderAny matches tables when at least one of these strings
	// appears in some header cell, case-insensitive.
	HeaderAny []string

	// MinColumns matches tables whose widest row has at least this many
	// cells.
	MinColumns int

	// XPath selects table elements directly. When set it replaces the
	// HeadingText and TableClass landmarks; the header and column
	// landmarks still filter the selected tables.
	XPath string
}

// Validate rejects hints that could never match, such as an XPath
// expression that does not compile.
func (h Hint) Validate() error {
	if h.MinColumns < 0 {
		return fmt.Errorf("markup: min columns must be >= 0, got %d", h.MinColumns)
	}
	if h.XPath != "" {
		if _, err := xpath.Compile(h.XPath); err != nil {
			return fmt.Errorf("markup: invalid xpath %q: %w", h.XPath, err)
		}
	}
	return nil
}

// MatchesTable applies the shape landmarks (header text, column count)
// to an extracted table. Markup-level landmarks (heading, class, xpath)
// are applied during the document scan and do not participate here.
func (h Hint) MatchesTable(t Table) bool {
	if h.MinColumns > 0 && t.widestRow() < h.MinColumns {
		return false
	}
	for _, needle := range h.HeaderAll {
		if !headerContains(t, needle) {
			return false
		}
	}
	if len(h.HeaderAny) > 0 {
		found := false
		for _, needle := range h.HeaderAny {
			if headerContains(t, needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// headerContains reports whether any header cell contains the needle,
// case-insensitive. Tables marking their header row with plain td
// cells have no Headers; the first data row stands in for them.
func headerContains(t Table, needle string) bool {
	needle = strings.ToLower(needle)
	cells := t.Headers
	if len(cells) == 0 && len(t.Rows) > 0 {
		cells = t.Rows[0]
	}
	for _, cell := range cells {
		if strings.Contains(strings.ToLower(cell), needle) {
			return true
		}
	}
	return false
}

// FindTables returns every table matching the hint, flattened, in
// document order. No match yields an empty slice, never an error:
// "found nothing" is a data condition the caller interprets.
func FindTables(doc *goquery.Document, hint Hint) []Table {
	if hint.XPath != "" {
		return findTablesXPath(doc, hint)
	}
	if hint.HeadingText != "" {
		return findTablesUnderHeading(doc, hint)
	}

	var tables []Table
	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		if t, ok := matchTable(sel, hint); ok {
			tables = append(tables, t)
		}
	})
	return tables
}

// findTablesUnderHeading scans headings and tables in document order,
// collecting tables that fall between a matching heading and the next
// heading. Tables in vendor docs are nested in wrapper divs, so sibling
// traversal is not enough; a flat ordered scan is.
func findTablesUnderHeading(doc *goquery.Document, hint Hint) []Table {
	needle := strings.ToLower(hint.HeadingText)
	var tables []Table
	var underHeading bool

	doc.Find("h1, h2, h3, h4, h5, h6, table").Each(func(_ int, sel *goquery.Selection) {
		if goquery.NodeName(sel) != "table" {
			underHeading = strings.Contains(strings.ToLower(sel.Text()), needle)
			return
		}
		if !underHeading {
			return
		}
		if t, ok := matchTable(sel, hint); ok {
			tables = append(tables, t)
		}
	})
	return tables
}

// findTablesXPath selects tables with the hint's XPath expression. The
// expression is validated at configuration time, so a query error here
// means no match.
func findTablesXPath(doc *goquery.Document, hint Hint) []Table {
	root := doc.Get(0)
	if root == nil {
		return nil
	}
	nodes, err := htmlquery.QueryAll(root, hint.XPath)
	if err != nil {
		return nil
	}

	var tables []Table
	for _, node := range nodes {
		sel := goquery.NewDocumentFromNode(node).Selection
		t := extractTable(sel)
		if hint.MatchesTable(t) {
			tables = append(tables, t)
		}
	}
	return tables
}

// matchTable applies markup-level and shape landmarks to one table
// selection, returning the extraction when everything matches.
func matchTable(sel *goquery.Selection, hint Hint) (Table, bool) {
	if hint.TableClass != "" && !sel.HasClass(hint.TableClass) {
		return Table{}, false
	}
	t := extractTable(sel)
	if !hint.MatchesTable(t) {
		return Table{}, false
	}
	return t, true
}

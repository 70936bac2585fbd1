package markup

import (
	"github.com/PuerkitoBio/goquery"
)

// Table is one <table> element flattened to trimmed cell text. Headers
// holds the first row when it is a header row (detected by <th> cells);
// Rows holds the remaining rows in document order.
type Table struct {
	Headers []string
	Rows    [][]string
}

// extractTable flattens a table selection. Header detection follows the
// markup: a first row containing <th> cells is a header, anything else
// is data.
func extractTable(sel *goquery.Selection) Table {
	var t Table

	hasHeaders := sel.Find("tr").First().Find("th").Length() > 0

	sel.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 && hasHeaders {
			row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				t.Headers = append(t.Headers, normalizeCell(cell.Text()))
			})
			return
		}
		var cells []string
		row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, normalizeCell(cell.Text()))
		})
		if len(cells) > 0 {
			t.Rows = append(t.Rows, cells)
		}
	})

	return t
}

// widestRow returns the largest cell count across header and data rows.
func (t Table) widestRow() int {
	widest := len(t.Headers)
	for _, row := range t.Rows {
		if len(row) > widest {
			widest = len(row)
		}
	}
	return widest
}

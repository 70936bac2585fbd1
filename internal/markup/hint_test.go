package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const releasePage = `<html><body>
<h2>Release Cadence</h2>
<div class="wrapper"><div class="inner">
<table class="tableblock">
  <tr><th>Version</th><th>Release Date</th><th>JDK</th></tr>
  <tr><td>4.6.0 Edge</td><td>Feb 2024</td><td>8, 11, and 17</td></tr>
  <tr><td>4.4.0 LTS</td><td>Oct 2023</td><td>8 and 11</td></tr>
</table>
</div></div>
<h2>Archive</h2>
<table>
  <tr><td>3.9.0</td><td>2018</td></tr>
</table>
</body></html>`

func TestFindTables(t *testing.T) {
	doc, err := Parse([]byte(releasePage))
	require.NoError(t, err)

	t.Run("zero hint matches everything in document order", func(t *testing.T) {
		tables := FindTables(doc, Hint{})
		require.Len(t, tables, 2)
		assert.Equal(t, "4.6.0 Edge", tables[0].Rows[0][0])
		assert.Equal(t, "3.9.0", tables[1].Rows[0][0])
	})

	t.Run("heading text scopes to following tables", func(t *testing.T) {
		tables := FindTables(doc, Hint{HeadingText: "release cadence"})
		require.Len(t, tables, 1, "wrapper divs between heading and table must not break the landmark")
		assert.Equal(t, []string{"Version", "Release Date", "JDK"}, tables[0].Headers)
	})

	t.Run("heading scope ends at next heading", func(t *testing.T) {
		tables := FindTables(doc, Hint{HeadingText: "archive"})
		require.Len(t, tables, 1)
		assert.Equal(t, "3.9.0", tables[0].Rows[0][0])
	})

	t.Run("table class", func(t *testing.T) {
		tables := FindTables(doc, Hint{TableClass: "tableblock"})
		require.Len(t, tables, 1)
		assert.Equal(t, "4.6.0 Edge", tables[0].Rows[0][0])
	})

	t.Run("header text", func(t *testing.T) {
		tables := FindTables(doc, Hint{HeaderAll: []string{"release date"}})
		require.Len(t, tables, 1)
	})

	t.Run("min columns", func(t *testing.T) {
		tables := FindTables(doc, Hint{MinColumns: 3})
		require.Len(t, tables, 1)
		assert.Len(t, tables[0].Rows[0], 3)
	})

	t.Run("xpath selection", func(t *testing.T) {
		tables := FindTables(doc, Hint{XPath: `//table[contains(@class, "tableblock")]`})
		require.Len(t, tables, 1)
		assert.Equal(t, "4.6.0 Edge", tables[0].Rows[0][0])
	})

	t.Run("xpath combined with shape filter", func(t *testing.T) {
		tables := FindTables(doc, Hint{XPath: `//table`, MinColumns: 3})
		require.Len(t, tables, 1)
	})

	t.Run("no match is empty not error", func(t *testing.T) {
		assert.Empty(t, FindTables(doc, Hint{HeadingText: "no such section"}))
		assert.Empty(t, FindTables(doc, Hint{TableClass: "no-such-class"}))
		assert.Empty(t, FindTables(doc, Hint{MinColumns: 12}))
	})
}

func TestExtractTable(t *testing.T) {
	t.Run("headerless table keeps all rows as data", func(t *testing.T) {
		doc, err := Parse([]byte(`<table>
			<tr><td>2.7</td><td>4.6.0</td></tr>
			<tr><td>2.6</td><td>4.5.0</td></tr>
		</table>`))
		require.NoError(t, err)

		tables := FindTables(doc, Hint{})
		require.Len(t, tables, 1)
		assert.Empty(t, tables[0].Headers)
		assert.Equal(t, [][]string{{"2.7", "4.6.0"}, {"2.6", "4.5.0"}}, tables[0].Rows)
	})

	t.Run("cell whitespace collapsed", func(t *testing.T) {
		doc, err := Parse([]byte("<table><tr><td>4.6.0\n\t   Edge</td></tr></table>"))
		require.NoError(t, err)

		tables := FindTables(doc, Hint{})
		require.Len(t, tables, 1)
		assert.Equal(t, "4.6.0 Edge", tables[0].Rows[0][0])
	})

	t.Run("empty rows dropped", func(t *testing.T) {
		doc, err := Parse([]byte(`<table><tr><th>V</th></tr><tr></tr><tr><td>4.4</td></tr></table>`))
		require.NoError(t, err)

		tables := FindTables(doc, Hint{})
		require.Len(t, tables, 1)
		assert.Equal(t, [][]string{{"4.4"}}, tables[0].Rows)
	})
}

func TestHintMatchesTable(t *testing.T) {
	table := Table{
		Headers: []string{"Mule Version", "DataWeave Version"},
		Rows:    [][]string{{"4.6.0", "2.7"}},
	}

	assert.True(t, Hint{}.MatchesTable(table))
	assert.True(t, Hint{HeaderAll: []string{"dataweave"}}.MatchesTable(table))
	assert.True(t, Hint{HeaderAll: []string{"mule", "dataweave"}}.MatchesTable(table))
	assert.False(t, Hint{HeaderAll: []string{"mule", "connector"}}.MatchesTable(table))
	assert.True(t, Hint{HeaderAny: []string{"connector", "runtime", "mule"}}.MatchesTable(table))
	assert.False(t, Hint{HeaderAny: []string{"connector", "software"}}.MatchesTable(table))
	assert.True(t, Hint{MinColumns: 2}.MatchesTable(table))
	assert.False(t, Hint{MinColumns: 3}.MatchesTable(table))

	headerless := Table{Rows: [][]string{{"Software", "Version"}, {"Mule", "4.6.0"}}}
	assert.True(t, Hint{HeaderAll: []string{"software", "version"}}.MatchesTable(headerless),
		"first data row stands in when the header row uses td cells")
}

func TestHintValidate(t *testing.T) {
	assert.NoError(t, Hint{}.Validate())
	assert.NoError(t, Hint{XPath: "//table"}.Validate())
	assert.Error(t, Hint{XPath: "//table["}.Validate())
	assert.Error(t, Hint{MinColumns: -1}.Validate())
}

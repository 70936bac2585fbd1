package scrape

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const javaPage = `<html><body>
<h2>Java Support</h2>
<table>
  <tr><th>Mule runtime</th><th>Java versions</th></tr>
  <tr><td>4.6 Edge</td><td>8, 11, and 17</td></tr>
  <tr><td>4.4.0 LTS</td><td>8 and 11</td></tr>
  <tr><td>Note</td><td>See the support policy</td></tr>
</table>
<table>
  <tr><th>Mule runtime</th><th>Java versions</th></tr>
  <tr><td>4.6 Edge</td><td>17 and 21</td></tr>
</table>
</body></html>`

func TestService_JavaCompatibility(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/java", htmlPage(javaPage))
	svc, _ := newTestService(t, mux)

	entries, err := svc.JavaCompatibility(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2, "prose rows are skipped")

	assert.Equal(t, "4.6 Edge", entries[0].Runtime)
	assert.Equal(t, []int{17, 21}, entries[0].JDK,
		"a repeated runtime keeps its position and takes the later JDK list")
	assert.Equal(t, "4.4.0 LTS", entries[1].Runtime)
	assert.Equal(t, []int{8, 11}, entries[1].JDK)
}

func TestService_JavaCompatibility_NoTables(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/java", htmlPage(`<html><body><p>moved</p></body></html>`))
	svc, _ := newTestService(t, mux)

	entries, err := svc.JavaCompatibility(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCollectorsAreNoops(t *testing.T) {
	var c *Collectors
	assert.NotPanics(t, func() {
		c.Load("Leads", "live")
		c.Webhook("leads", "refresh", "ok")
		c.Assistant("ok")
		c.Search("text")
		c.Theme("lagon")
		c.Request("GET", "/healthz", "200", 0.01)
	})
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestCollectorsExpose(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)
	c.Theme("culture")
	c.Theme("culture")
	c.Search("vector")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.themes.WithLabelValues("culture")))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	b, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), `marketops_search_requests_total{mode="vector"} 1`)
}

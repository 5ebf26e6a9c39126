package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "marketops"

// Collectors groups every counter the service exports. A nil *Collectors is valid
// and records nothing, which keeps tests and tools free of registry setup.
type Collectors struct {
	gatherer prometheus.Gatherer

	loads     *prometheus.CounterVec
	webhooks  *prometheus.CounterVec
	assistant *prometheus.CounterVec
	search    *prometheus.CounterVec
	themes    *prometheus.CounterVec
	requests  *prometheus.HistogramVec
}

func New(reg *prometheus.Registry) *Collectors {
	f := promauto.With(reg)
	return &Collectors{
		gatherer: reg,
		loads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "table_loads_total",
			Help: "Table reads by data source (live or fallback).",
		}, []string{"table", "source"}),
		webhooks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "webhook_triggers_total",
			Help: "Automation webhook triggers by page, action and outcome.",
		}, []string{"page", "action", "outcome"}),
		assistant: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "assistant_requests_total",
			Help: "Assistant chat requests by outcome.",
		}, []string{"outcome"}),
		search: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "search_requests_total",
			Help: "Search requests by mode actually served (vector or text).",
		}, []string{"mode"}),
		themes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "visual_theme_matches_total",
			Help: "Theme selected by the prompt matcher.",
		}, []string{"theme"}),
		requests: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency by method, route pattern and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (c *Collectors) Load(table, source string) {
	if c == nil {
		return
	}
	c.loads.WithLabelValues(table, source).Inc()
}

func (c *Collectors) Webhook(page, action, outcome string) {
	if c == nil {
		return
	}
	c.webhooks.WithLabelValues(page, action, outcome).Inc()
}

func (c *Collectors) Assistant(outcome string) {
	if c == nil {
		return
	}
	c.assistant.WithLabelValues(outcome).Inc()
}

func (c *Collectors) Search(mode string) {
	if c == nil {
		return
	}
	c.search.WithLabelValues(mode).Inc()
}

func (c *Collectors) Theme(theme string) {
	if c == nil {
		return
	}
	c.themes.WithLabelValues(theme).Inc()
}

func (c *Collectors) Request(method, route, status string, seconds float64) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(method, route, status).Observe(seconds)
}

// Handler serves the registry in the Prometheus text format.
func (c *Collectors) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

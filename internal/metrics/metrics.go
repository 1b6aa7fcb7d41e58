package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mr1hm/go-alert-dashboard/internal/models"
)

const namespace = "dashboard"

// Metrics holds the Prometheus collectors for the dashboard service
type Metrics struct {
	registry *prometheus.Registry

	AlertsIngested    *prometheus.CounterVec
	TrendTicks        *prometheus.CounterVec
	TrendResets       *prometheus.CounterVec
	FeedSize          prometheus.Gauge
	StreamSubscribers prometheus.Gauge
}

// New registers all collectors on a fresh registry, so several instances
// can coexist in tests.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		AlertsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_ingested_total",
			Help:      "Total number of alerts added to the feed",
		}, []string{"severity"}),
		TrendTicks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trend_ticks_total",
			Help:      "Total number of samples appended to trend windows",
		}, []string{"severity"}),
		TrendResets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trend_resets_total",
			Help:      "Total number of trend window repopulations",
		}, []string{"severity"}),
		FeedSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_size",
			Help:      "Number of alerts in the backing feed",
		}),
		StreamSubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_subscribers",
			Help:      "Number of connected event stream clients",
		}),
	}
}

func (m *Metrics) ObserveIngest(sev models.Severity, feedSize int) {
	m.AlertsIngested.WithLabelValues(sev.String()).Inc()
	m.FeedSize.Set(float64(feedSize))
}

func (m *Metrics) ObserveTick(sev models.Severity) {
	m.TrendTicks.WithLabelValues(sev.String()).Inc()
}

func (m *Metrics) ObserveReset(sev models.Severity) {
	m.TrendResets.WithLabelValues(sev.String()).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements isbnmap.MetricsCollector and records HTTP
// latency per route.
type PrometheusCollector struct {
	loads    *prometheus.CounterVec
	loadTime prometheus.Histogram
	datasets prometheus.Gauge
	queries  *prometheus.HistogramVec
	requests *prometheus.HistogramVec
}

// NewPrometheusCollector creates the collectors and registers them with reg.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "isbnmap_loads_total",
			Help: "Catalog loads by source and status",
		}, []string{"source", "status"}),
		loadTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "isbnmap_load_duration_seconds",
			Help:    "Time to load the catalog",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		datasets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "isbnmap_datasets",
			Help: "Datasets in the loaded catalog",
		}),
		queries: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "isbnmap_query_duration_seconds",
			Help:    "Latency of index queries",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "status"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "isbnmap_http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "code"}),
	}

	reg.MustRegister(c.loads, c.loadTime, c.datasets, c.queries, c.requests)
	return c
}

// RecordLoad implements isbnmap.MetricsCollector.
func (c *PrometheusCollector) RecordLoad(source string, datasets int, d time.Duration, err error) {
	c.loads.WithLabelValues(source, status(err)).Inc()
	if err != nil {
		return
	}
	c.loadTime.Observe(d.Seconds())
	c.datasets.Set(float64(datasets))
}

// RecordQuery implements isbnmap.MetricsCollector.
func (c *PrometheusCollector) RecordQuery(op string, d time.Duration, err error) {
	c.queries.WithLabelValues(op, status(err)).Observe(d.Seconds())
}

func (c *PrometheusCollector) observeRequest(route, code string, d time.Duration) {
	c.requests.WithLabelValues(route, code).Observe(d.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

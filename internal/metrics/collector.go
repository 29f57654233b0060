package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector collects and exposes metrics
type Collector struct {
	registry        *prometheus.Registry
	objectsTotal    *prometheus.CounterVec
	bytesTotal      prometheus.Counter
	inflightWorkers prometheus.Gauge
	duration        prometheus.Histogram
}

// New creates a new metrics collector with its own registry
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		objectsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upload_objects_total",
				Help: "Total number of objects processed",
			},
			[]string{"status"},
		),
		bytesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "upload_bytes_total",
				Help: "Total bytes uploaded",
			},
		),
		inflightWorkers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "upload_inflight_workers",
				Help: "Number of workers currently uploading",
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "upload_object_duration_seconds",
				Help:    "Time taken to upload an object",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	c.registry.MustRegister(c.objectsTotal)
	c.registry.MustRegister(c.bytesTotal)
	c.registry.MustRegister(c.inflightWorkers)
	c.registry.MustRegister(c.duration)

	return c
}

// IncSuccess increments the successful object counter
func (c *Collector) IncSuccess() {
	c.objectsTotal.WithLabelValues("success").Inc()
}

// IncFailed increments the failed object counter
func (c *Collector) IncFailed() {
	c.objectsTotal.WithLabelValues("failed").Inc()
}

// AddBytes adds to total bytes uploaded
func (c *Collector) AddBytes(bytes int64) {
	c.bytesTotal.Add(float64(bytes))
}

// IncInflight increments the in-flight worker gauge
func (c *Collector) IncInflight() {
	c.inflightWorkers.Inc()
}

// DecInflight decrements the in-flight worker gauge
func (c *Collector) DecInflight() {
	c.inflightWorkers.Dec()
}

// ObserveDuration observes upload duration
func (c *Collector) ObserveDuration(duration time.Duration) {
	c.duration.Observe(duration.Seconds())
}

// Handler returns the HTTP handler exposing this collector's metrics
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// StartServer starts the metrics HTTP server
func (c *Collector) StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	return http.ListenAndServe(addr, mux)
}

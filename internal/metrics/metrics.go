// Package metrics records upload outcomes as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeSuccess     = "success"
	OutcomeReadError   = "read_error"
	OutcomeNetworkErr  = "network_error"
	OutcomeStatusError = "status_error"
	OutcomeParseError  = "parse_error"
)

// Config configures the collector.
type Config struct {
	// Namespace is the metrics namespace (default: "uploader").
	Namespace string

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// Collector holds the upload metrics.
type Collector struct {
	uploads      *prometheus.CounterVec
	duration     prometheus.Histogram
	payloadBytes prometheus.Histogram
}

// New registers the upload metrics and returns a Collector.
// Registering twice on the same registry panics, as with promauto.
func New(opts ...Option) *Collector {
	cfg := Config{
		Namespace: "uploader",
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)

	return &Collector{
		uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "uploads_total",
			Help:      "Total number of upload attempts by outcome",
		}, []string{"outcome"}),

		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "upload_duration_seconds",
			Help:      "Upload duration from read to parsed response, in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		payloadBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "payload_bytes",
			Help:      "Size of the JSON envelope sent per upload, in bytes",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8), // 1KB to 16MB
		}),
	}
}

// Observe records one finished upload. A nil Collector is a no-op.
func (c *Collector) Observe(outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.uploads.WithLabelValues(outcome).Inc()
	c.duration.Observe(elapsed.Seconds())
}

// ObservePayload records the size of an envelope about to be sent.
func (c *Collector) ObservePayload(size int) {
	if c == nil {
		return
	}
	c.payloadBytes.Observe(float64(size))
}

// Package metrics exports render statistics to Prometheus.
//
// A Collector observes processor renders and counts diagnostics reported
// by the expression engine:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(metrics.WithRegistry(reg))
//	engine := expr.New(expr.WithReporter(m.Reporter(errors.Discard)))
//	r := processor.New(processor.WithEngine(engine), processor.WithObserver(m))
//
// Metrics collected:
//   - vschema_renders_total: renders by status
//   - vschema_render_duration_seconds: render duration
//   - vschema_nodes_total: schema nodes by outcome
//   - vschema_directives_applied_total: directive applications by name
//   - vschema_diagnostics_total: reported diagnostics by error code
//   - vschema_reloads_total: live-reload broadcasts
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/vschema/internal/errors"
	"github.com/vango-dev/vschema/pkg/processor"
)

// Config configures the collector.
type Config struct {
	// Namespace is the metrics namespace (default: "vschema").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

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

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "vschema",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector holds the render metrics. It implements processor.Observer.
type Collector struct {
	rendersTotal   *prometheus.CounterVec
	renderDuration prometheus.Histogram
	nodesTotal     *prometheus.CounterVec
	directives     *prometheus.CounterVec
	diagnostics    *prometheus.CounterVec
	reloads        prometheus.Counter
}

// New registers the render metrics and returns their collector. Registering
// twice against the same registry panics, as with promauto.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of schema renders",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Schema render duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		nodesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "nodes_total",
			Help:        "Schema nodes processed by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		directives: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "directives_applied_total",
			Help:        "Directive applications by directive",
			ConstLabels: config.ConstLabels,
		}, []string{"directive"}),

		diagnostics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "diagnostics_total",
			Help:        "Reported diagnostics by error code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		reloads: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reloads_total",
			Help:        "Total number of live-reload broadcasts",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// ObserveRender implements processor.Observer.
func (c *Collector) ObserveRender(_ context.Context, stats processor.Stats, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.rendersTotal.WithLabelValues(status).Inc()
	c.renderDuration.Observe(stats.Duration.Seconds())

	c.nodesTotal.WithLabelValues("constructed").Add(float64(stats.Elements))
	c.nodesTotal.WithLabelValues("skipped").Add(float64(stats.Skipped))
	c.nodesTotal.WithLabelValues("fanout").Add(float64(stats.FanOuts))
	for name, n := range stats.Applied {
		c.directives.WithLabelValues(name).Add(float64(n))
	}
}

// Reporter returns a reporter that counts each diagnostic by code before
// passing it to next.
func (c *Collector) Reporter(next errors.Reporter) errors.Reporter {
	if next == nil {
		next = errors.Discard
	}
	return errors.ReporterFunc(func(err error) {
		code := errors.Code(err)
		if code == "" {
			code = "unknown"
		}
		c.diagnostics.WithLabelValues(code).Inc()
		next.Report(err)
	})
}

// RecordReload counts a live-reload broadcast.
func (c *Collector) RecordReload() {
	c.reloads.Inc()
}

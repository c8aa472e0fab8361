package processor

import (
	"log/slog"

	"github.com/vango-dev/vschema/pkg/directive"
	"github.com/vango-dev/vschema/pkg/expr"
	"github.com/vango-dev/vschema/pkg/registry"
	"github.com/vango-dev/vschema/pkg/style"
	"github.com/vango-dev/vschema/pkg/vdom"
)

// Default tracer name for render spans.
const defaultTracerName = "vschema"

// Config configures a Renderer.
type Config struct {
	// Engine evaluates expressions. Its reporter receives diagnostics.
	Engine *expr.Engine

	// Pipeline overrides the standard directive pipeline.
	Pipeline *directive.Pipeline

	// Registry resolves component tags (default: registry.Empty).
	Registry registry.Registry

	// Constructor builds the output nodes (default: vdom.DefaultConstructor).
	Constructor vdom.Constructor

	// Styles receives css attributes (default: style.Discard).
	Styles style.Sink

	// Observer is notified after every render.
	Observer Observer

	// Logger for debug output (default: slog.Default()).
	Logger *slog.Logger

	// TracerName is the OpenTelemetry tracer name (default: "vschema").
	TracerName string

	// Delimiters for text interpolation (default: "{{", "}}").
	Delimiters [2]string
}

// Option configures a Renderer.
type Option func(*Config)

// WithEngine sets the expression engine.
func WithEngine(e *expr.Engine) Option {
	return func(c *Config) { c.Engine = e }
}

// WithPipeline replaces the directive pipeline.
func WithPipeline(p *directive.Pipeline) Option {
	return func(c *Config) { c.Pipeline = p }
}

// WithRegistry sets the component registry.
func WithRegistry(r registry.Registry) Option {
	return func(c *Config) { c.Registry = r }
}

// WithConstructor sets the element constructor.
func WithConstructor(ctor vdom.Constructor) Option {
	return func(c *Config) { c.Constructor = ctor }
}

// WithStyleSink sets where css attributes are sent.
func WithStyleSink(s style.Sink) Option {
	return func(c *Config) { c.Styles = s }
}

// WithObserver sets the render observer.
func WithObserver(o Observer) Option {
	return func(c *Config) { c.Observer = o }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) { c.TracerName = name }
}

// WithDelimiters sets the interpolation delimiters.
func WithDelimiters(left, right string) Option {
	return func(c *Config) { c.Delimiters = [2]string{left, right} }
}

func (c *Config) applyDefaults() {
	if c.Engine == nil {
		c.Engine = expr.New()
	}
	if c.Registry == nil {
		c.Registry = registry.Empty
	}
	if c.Constructor == nil {
		c.Constructor = vdom.DefaultConstructor
	}
	if c.Styles == nil {
		c.Styles = style.Discard
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.TracerName == "" {
		c.TracerName = defaultTracerName
	}
	if c.Delimiters[0] == "" || c.Delimiters[1] == "" {
		c.Delimiters = [2]string{directive.DefaultOpen, directive.DefaultClose}
	}
	if c.Pipeline == nil {
		c.Pipeline = directive.Standard(c.Engine,
			directive.WithDelimiters(c.Delimiters[0], c.Delimiters[1]),
			directive.WithComponentCheck(func(name string) bool {
				_, ok := c.Registry.Resolve(name)
				return ok
			}),
		)
	}
}

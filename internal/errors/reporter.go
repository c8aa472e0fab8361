package errors

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
)

// Reporter is the diagnostics channel. Implementations must be safe for
// concurrent use; the renderer may report from several render passes at once.
type Reporter interface {
	Report(err error)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(err error)

// Report implements Reporter.
func (f ReporterFunc) Report(err error) { f(err) }

// Discard drops every diagnostic.
var Discard Reporter = ReporterFunc(func(error) {})

// LogReporter writes diagnostics to a structured logger at warn level.
type LogReporter struct {
	Logger *slog.Logger
}

// NewLogReporter returns a LogReporter for logger, or slog.Default() if nil.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{Logger: logger}
}

// Report implements Reporter.
func (r *LogReporter) Report(err error) {
	if err == nil {
		return
	}
	attrs := []slog.Attr{slog.String("err", err.Error())}
	var e *Error
	if stderrors.As(err, &e) {
		attrs = append(attrs,
			slog.String("code", e.Code),
			slog.String("category", string(e.Category)),
		)
		if e.Source != "" {
			attrs = append(attrs, slog.String("source", e.Source))
		}
	}
	r.Logger.LogAttrs(context.Background(), slog.LevelWarn, "schema diagnostic", attrs...)
}

// Collector keeps every reported diagnostic in memory.
type Collector struct {
	mu   sync.Mutex
	errs []error
}

// Report implements Reporter.
func (c *Collector) Report(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	c.errs = append(c.errs, err)
	c.mu.Unlock()
}

// Errors returns a copy of the collected diagnostics.
func (c *Collector) Errors() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]error, len(c.errs))
	copy(out, c.errs)
	return out
}

// Codes returns the codes of the collected diagnostics in report order.
func (c *Collector) Codes() []string {
	errs := c.Errors()
	codes := make([]string, 0, len(errs))
	for _, err := range errs {
		codes = append(codes, Code(err))
	}
	return codes
}

// Reset clears the collected diagnostics.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.errs = nil
	c.mu.Unlock()
}

// Multi fans a diagnostic out to several reporters.
func Multi(reporters ...Reporter) Reporter {
	return ReporterFunc(func(err error) {
		for _, r := range reporters {
			if r != nil {
				r.Report(err)
			}
		}
	})
}

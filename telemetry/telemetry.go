// Package telemetry records how long tokenizing and rendering take, as a
// tree of named timers carried through a context.
//
// Collectors are optional: code asks the context for one and gets a no-op
// collector when telemetry is disabled, so instrumented functions keep
// their signatures.
//
// Example usage:
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.FromContext(ctx).Start("highlight main.roc")
//	lex := timer.Child("tokenize")
//	// ... scan ...
//	lex.Tokens(n)
//	lex.End()
//	timer.End()
//
//	collector.Report(os.Stderr, output.NewStyles(os.Stderr))
package telemetry

import (
	"context"
	"io"

	"github.com/robinvdvleuten/roclex/output"
)

type contextKey struct{}

var collectorKey = contextKey{}

// Collector gathers timers and reports them.
type Collector interface {
	// Start begins a top-level timer, or a child of the innermost running
	// one.
	Start(name string) Timer

	// Report writes the collected timings. styles may be nil for plain
	// output.
	Report(w io.Writer, styles *output.Styles)
}

// Timer tracks a single operation.
type Timer interface {
	End()

	// Child starts a timer nested under this one.
	Child(name string) Timer

	// Tokens records how many tokens the operation produced.
	Tokens(n int)
}

// WithCollector returns a context carrying collector.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext returns the context's collector, or a no-op collector.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}

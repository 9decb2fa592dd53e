package transmit

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Tracer is the capability the sender needs to bracket one partition POST
// in a span. The real tracer comes from whatever TracerProvider the host
// application configured; tests and the null/mock sinks get the no-op
// implementation for free.
type Tracer interface {
	Start(ctx context.Context, name string) (context.Context, trace.Span)
}

// otelTracer adapts a trace.Tracer to Tracer, starting each span under the
// caller's name and tagging it as a client span.
type otelTracer struct {
	t trace.Tracer
}

var _ Tracer = (*otelTracer)(nil)

// NewTracer wraps t, falling back to a no-op tracer when t is nil.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		t = noop.Tracer{}
	}
	return &otelTracer{t: t}
}

func (o *otelTracer) Start(ctx context.Context, name string) (context.Context, trace.Span) {
	return o.t.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient))
}

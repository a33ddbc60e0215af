package chat

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var chatTracer = otel.Tracer("mlbb-squad-tracker/internal/interfaces/chat")

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return chatTracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindServer))
}

package httpapi

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "mlbb-squad-tracker/internal/interfaces/httpapi"

// startSpan opens one span per registry endpoint, tagged with the matched
// route. Requests without an incoming trace (health checks are filtered in
// RequestTracing) keep the non-recording span from their context.
func (h *Handler) startSpan(r *http.Request, operation string) (context.Context, trace.Span) {
	ctx := r.Context()
	if !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, trace.SpanFromContext(ctx)
	}
	return h.tracer.Start(ctx, "httpapi.Handler."+operation,
		trace.WithAttributes(
			attribute.String("http.route", r.Pattern),
			attribute.String("registry.operation", operation),
		),
	)
}

// recordError attaches err to the span in ctx. Only server-side failures
// mark the span as errored; lookups that miss are expected traffic.
func recordError(ctx context.Context, err error, mapped mappedError) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(attribute.String("registry.error_reason", mapped.Reason))
	if mapped.HTTPStatus >= http.StatusInternalServerError {
		span.RecordError(err)
		span.SetStatus(codes.Error, mapped.Status)
	}
}

func defaultTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

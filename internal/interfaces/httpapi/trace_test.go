package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/platform/logging"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/usecase"
)

func newTracedMux(t *testing.T) (*http.ServeMux, *sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	store := memory.NewStore()
	handler := NewHandler(usecase.NewRegistryService(store, store, logging.NewNop()), logging.NewNop())
	handler.tracer = provider.Tracer("test")

	mux := http.NewServeMux()
	registerRegistryRoutes(mux, handler)
	return mux, provider, recorder
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) string {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value.AsString()
		}
	}
	return ""
}

func TestHandlerSpan_TagsRouteAndMissReason(t *testing.T) {
	t.Parallel()

	mux, provider, recorder := newTracedMux(t)
	ctx, parent := provider.Tracer("test").Start(t.Context(), "GET /v1/squads/{name}")

	req := httptest.NewRequest(http.MethodGet, "/v1/squads/ghost", nil).WithContext(ctx)
	mux.ServeHTTP(httptest.NewRecorder(), req)
	parent.End()

	var found sdktrace.ReadOnlySpan
	for _, span := range recorder.Ended() {
		if span.Name() == "httpapi.Handler.GetSquad" {
			found = span
		}
	}
	if found == nil {
		t.Fatalf("expected a GetSquad span, got %d spans", len(recorder.Ended()))
	}
	if got := spanAttr(found, "http.route"); got != "GET /v1/squads/{name}" {
		t.Fatalf("unexpected route attribute: %q", got)
	}
	if got := spanAttr(found, "registry.error_reason"); got != "notFound" {
		t.Fatalf("unexpected error reason: %q", got)
	}
	if found.Status().Code == codes.Error {
		t.Fatalf("a missing squad must not mark the span as failed")
	}
	if found.Parent().SpanID() != parent.SpanContext().SpanID() {
		t.Fatalf("expected handler span under the request span")
	}
}

func TestHandlerSpan_UntracedRequestRecordsNothing(t *testing.T) {
	t.Parallel()

	mux, _, recorder := newTracedMux(t)
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/squads", nil))

	if n := len(recorder.Ended()); n != 0 {
		t.Fatalf("expected no spans without an incoming trace, got %d", n)
	}
}

func TestRecordError_ServerFailureMarksSpan(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	ctx, span := provider.Tracer("test").Start(t.Context(), "op")

	err := errors.Join(usecase.ErrPersistenceFailure, errors.New("disk full"))
	recordError(ctx, err, mapError(err))
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 || ended[0].Status().Code != codes.Error || ended[0].Status().Description != "UNAVAILABLE" {
		t.Fatalf("expected errored span, got %+v", ended)
	}
	if len(ended[0].Events()) == 0 {
		t.Fatalf("expected the error recorded as an event")
	}
}

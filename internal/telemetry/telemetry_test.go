package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestSetup_NoEndpointIsNoop(t *testing.T) {
	tp, shutdown, err := Setup(context.Background(), Config{})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if _, ok := tp.(noop.TracerProvider); !ok {
		t.Errorf("provider = %T, want noop", tp)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestSetup_WithEndpoint(t *testing.T) {
	for _, endpoint := range []string{"127.0.0.1:4318", "http://127.0.0.1:4318/v1/traces"} {
		tp, shutdown, err := Setup(context.Background(), Config{Endpoint: endpoint, Insecure: true, SampleRatio: 1})
		if err != nil {
			t.Fatalf("Setup(%s): %v", endpoint, err)
		}
		if _, ok := tp.(*sdktrace.TracerProvider); !ok {
			t.Errorf("provider = %T, want sdk provider", tp)
		}
		// Nothing was recorded, so shutdown has nothing to flush.
		if err := shutdown(context.Background()); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	}
}

func TestNewTracerProvider_Sampling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ratio float64
		want  int
	}{
		{ratio: 1, want: 10},
		{ratio: 0, want: 0},
		{ratio: 7, want: 10},
		{ratio: -1, want: 0},
	}

	for _, tt := range tests {
		exp := tracetest.NewInMemoryExporter()
		tp := NewTracerProvider(Config{SampleRatio: tt.ratio}, sdktrace.WithSyncer(exp))
		tracer := tp.Tracer("test")
		for range 10 {
			_, span := tracer.Start(context.Background(), "op")
			span.End()
		}
		if got := len(exp.GetSpans()); got != tt.want {
			t.Errorf("ratio %v: exported %d spans, want %d", tt.ratio, got, tt.want)
		}
		_ = tp.Shutdown(context.Background())
	}
}

func TestNewTracerProvider_Resource(t *testing.T) {
	t.Parallel()

	exp := tracetest.NewInMemoryExporter()
	tp := NewTracerProvider(Config{SampleRatio: 1, ServiceVersion: "v1.2.3"}, sdktrace.WithSyncer(exp))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.End()

	spans := exp.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	attrs := map[attribute.Key]string{}
	for _, kv := range spans[0].Resource.Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}
	if attrs["service.name"] != "sovereign" {
		t.Errorf("service.name = %q", attrs["service.name"])
	}
	if attrs["service.version"] != "v1.2.3" {
		t.Errorf("service.version = %q", attrs["service.version"])
	}
}

package observability

import (
	"context"
	"errors"
	"testing"
)

func TestInitTracingNoneIsNoop(t *testing.T) {
	shutdown, err := InitTracing("test", "none")
	if err != nil {
		t.Fatalf("InitTracing() error = %v", err)
	}
	ctx, span := StartSpan(context.Background(), "noop")
	EndSpan(span, errors.New("ignored"))
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown error = %v", err)
	}
}

func TestInitTracingRejectsUnknownExporter(t *testing.T) {
	if _, err := InitTracing("test", "zipkin"); err == nil {
		t.Fatalf("expected error for unknown exporter")
	}
}

func TestMetricsObserveUpstreamLatency(t *testing.T) {
	m := NewMetrics("test_observability_latency")
	m.ObserveUpstreamLatency("list-agents", 0)
	m.ProxyRequests.WithLabelValues("list-agents", "ok").Inc()
}

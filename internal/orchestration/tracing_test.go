package orchestration_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/agbru/distprimes/internal/orchestration"
	"github.com/agbru/distprimes/internal/orchestration/mocks"
	"github.com/agbru/distprimes/internal/shm"
)

func newRecordingProvider(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, sr
}

func spansByName(spans []sdktrace.ReadOnlySpan) map[string]sdktrace.ReadOnlySpan {
	m := make(map[string]sdktrace.ReadOnlySpan, len(spans))
	for _, s := range spans {
		m[s.Name()] = s
	}
	return m
}

func TestRun_TracesPhasesUnderRunSpan(t *testing.T) {
	names := testNames(t)
	tp, sr := newRecordingProvider(t)
	c := &orchestration.Coordinator{Names: names, Spawner: newGoroutineSpawner(names), TracerProvider: tp}

	if err := c.Run(context.Background(), 10, 2, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}

	spans := spansByName(sr.Ended())
	run, ok := spans["coordinator.run"]
	if !ok {
		t.Fatalf("no coordinator.run span among %d spans", len(spans))
	}
	if run.Parent().IsValid() {
		t.Error("coordinator.run should be a root span")
	}
	if run.Status().Code == codes.Error {
		t.Errorf("run status = %v, want success", run.Status())
	}
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range run.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if attrs["primes"].AsInt64() != 10 || attrs["processes"].AsInt64() != 2 {
		t.Errorf("run attributes = %v", run.Attributes())
	}

	for _, phase := range []string{"partition", "create_store", "create_signal", "spawn", "collect", "reap", "emit"} {
		span, ok := spans["coordinator."+phase]
		if !ok {
			t.Errorf("missing span for phase %s", phase)
			continue
		}
		if span.Parent().SpanID() != run.SpanContext().SpanID() {
			t.Errorf("%s parent = %v, want the run span", span.Name(), span.Parent().SpanID())
		}
		if span.SpanContext().TraceID() != run.SpanContext().TraceID() {
			t.Errorf("%s belongs to another trace", span.Name())
		}
		if span.Status().Code == codes.Error {
			t.Errorf("%s status = %v, want success", span.Name(), span.Status())
		}
	}
}

func TestRun_TracesFailedPhase(t *testing.T) {
	ctrl := gomock.NewController(t)
	names := testNames(t)
	stale, err := shm.Create(names.Segment, []uint64{1})
	if err != nil {
		t.Fatal(err)
	}
	_ = stale.Close()

	tp, sr := newRecordingProvider(t)
	c := &orchestration.Coordinator{Names: names, Spawner: mocks.NewMockSpawner(ctrl), TracerProvider: tp}
	if err := c.Run(context.Background(), 10, 2, &bytes.Buffer{}); err == nil {
		t.Fatal("Run() with a stale segment should fail")
	}

	spans := spansByName(sr.Ended())
	run := spans["coordinator.run"]
	if run == nil || run.Status().Code != codes.Error || run.Status().Description == "" {
		t.Fatalf("run span = %v, want error status with a description", run)
	}
	store := spans["coordinator.create_store"]
	if store == nil || store.Status().Code != codes.Error {
		t.Fatalf("create_store span = %v, want error status", store)
	}
	if len(store.Events()) == 0 || store.Events()[0].Name != "exception" {
		t.Errorf("create_store span should record the error event, got %v", store.Events())
	}
	if _, ok := spans["coordinator.spawn"]; ok {
		t.Error("no phase after the failing one should be traced")
	}
}

func TestRun_TracesValidationFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	names := testNames(t)
	tp, sr := newRecordingProvider(t)
	c := &orchestration.Coordinator{Names: names, Spawner: mocks.NewMockSpawner(ctrl), TracerProvider: tp}

	if err := c.Run(context.Background(), 3, 5, &bytes.Buffer{}); err == nil {
		t.Fatal("Run() should reject more processes than primes")
	}
	spans := sr.Ended()
	if len(spans) != 1 || spans[0].Name() != "coordinator.run" {
		t.Fatalf("spans = %d, want only coordinator.run", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("run status = %v, want error", spans[0].Status())
	}
}

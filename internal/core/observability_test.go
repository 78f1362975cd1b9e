package core

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"shopcore/internal/infra/persistence/memory"
)

func TestExpvarMetricsRecorderAggregates(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	if rec.Name() == "" {
		t.Fatalf("expected generated name")
	}
	rec.RecordOperation("create_item", 5*time.Millisecond, "ok")
	rec.RecordOperation("create_item", 7*time.Millisecond, "ok")
	rec.RecordOperation("create_item", time.Millisecond, "error")

	snap := rec.Snapshot()
	if snap.DurationsMS["create_item"] != 13 {
		t.Fatalf("expected 13ms total, got %v", snap.DurationsMS["create_item"])
	}
	if snap.Results["create_item"]["ok"] != 2 || snap.Results["create_item"]["error"] != 1 {
		t.Fatalf("unexpected result counts: %+v", snap.Results)
	}

	// returned snapshot must be detached from internal state
	snap.Results["create_item"]["ok"] = 99
	if rec.Snapshot().Results["create_item"]["ok"] != 2 {
		t.Fatalf("snapshot mutation leaked into recorder")
	}
}

func TestServiceRecordsOperationMetrics(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	svc := NewService(memory.NewStore(nil), WithMetrics(rec))
	if _, _, err := svc.CreateCustomer(context.Background(), Customer{Name: "Asha"}); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if _, _, err := svc.UpdateCustomer(context.Background(), "missing", func(*Customer) error { return nil }); err == nil {
		t.Fatalf("expected update failure")
	}

	snap := rec.Snapshot()
	if snap.Results["create_customer"]["ok"] != 1 {
		t.Fatalf("expected create_customer ok count 1, got %+v", snap.Results)
	}
	if snap.Results["update_customer"]["error"] != 1 {
		t.Fatalf("expected update_customer error count 1, got %+v", snap.Results)
	}
}

func TestPrometheusMetricsRecorderRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusMetricsRecorder(reg)
	rec.RecordOperation("record_sale", 3*time.Millisecond, "ok")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	if !names["shopcore_gateway_operation_duration_seconds"] {
		t.Fatalf("missing duration histogram, got %v", names)
	}
	if !names["shopcore_gateway_operation_results_total"] {
		t.Fatalf("missing results counter, got %v", names)
	}
}

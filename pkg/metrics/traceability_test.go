package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNilSafeWithoutRegisterer(t *testing.T) {
	m := NewTraceabilityMetrics(nil)
	// none of these should panic
	m.IncBatchCreated("transaction")
	m.IncBatchFailure("legacy")
	m.IncQRFallback()
	m.IncQRFailure()
	m.IncScanRecorded("customs")

	var zero *TraceabilityMetrics
	zero.IncBatchCreated("transaction")
	zero.IncScanRecorded("")
}

func TestRegistersOnProvidedRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewTraceabilityMetrics(reg)
	m.IncBatchCreated("transaction")
	m.IncScanRecorded("inspector")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, fam := range families {
		names[fam.GetName()] = true
	}
	if !names["trace_batches_created_total"] {
		t.Fatal("expected trace_batches_created_total to be registered")
	}
	if !names["trace_scans_recorded_total"] {
		t.Fatal("expected trace_scans_recorded_total to be registered")
	}
}

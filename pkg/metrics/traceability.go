package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// TraceabilityMetrics records counters for the batch/scan pipeline.
type TraceabilityMetrics struct {
	batchesCreated *prometheus.CounterVec
	batchFailures  *prometheus.CounterVec
	qrFallbacks    prometheus.Counter
	qrFailures     prometheus.Counter
	scansRecorded  *prometheus.CounterVec
}

// NewTraceabilityMetrics registers the traceability metrics on the provided registerer.
func NewTraceabilityMetrics(reg prometheus.Registerer) *TraceabilityMetrics {
	if reg == nil {
		return &TraceabilityMetrics{}
	}
	batchesCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trace_batches_created_total",
		Help: "Batches successfully created, by creation flow.",
	}, []string{"flow"})
	batchFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trace_batch_failures_total",
		Help: "Batch creation failures, by creation flow.",
	}, []string{"flow"})
	qrFallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trace_qr_compact_fallbacks_total",
		Help: "QR renders that fell back to the compact payload.",
	})
	qrFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trace_qr_failures_total",
		Help: "QR renders that produced no image (batch persisted degraded).",
	})
	scansRecorded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trace_scans_recorded_total",
		Help: "Verification scans recorded, by scanner type.",
	}, []string{"scanner_type"})
	reg.MustRegister(batchesCreated, batchFailures, qrFallbacks, qrFailures, scansRecorded)
	return &TraceabilityMetrics{
		batchesCreated: batchesCreated,
		batchFailures:  batchFailures,
		qrFallbacks:    qrFallbacks,
		qrFailures:     qrFailures,
		scansRecorded:  scansRecorded,
	}
}

// IncBatchCreated increments the created counter for the named flow.
func (m *TraceabilityMetrics) IncBatchCreated(flow string) {
	if m == nil || m.batchesCreated == nil {
		return
	}
	m.batchesCreated.WithLabelValues(normalizeLabel(flow)).Inc()
}

// IncBatchFailure increments the failure counter for the named flow.
func (m *TraceabilityMetrics) IncBatchFailure(flow string) {
	if m == nil || m.batchFailures == nil {
		return
	}
	m.batchFailures.WithLabelValues(normalizeLabel(flow)).Inc()
}

// IncQRFallback increments the compact fallback counter.
func (m *TraceabilityMetrics) IncQRFallback() {
	if m == nil || m.qrFallbacks == nil {
		return
	}
	m.qrFallbacks.Inc()
}

// IncQRFailure increments the failed render counter.
func (m *TraceabilityMetrics) IncQRFailure() {
	if m == nil || m.qrFailures == nil {
		return
	}
	m.qrFailures.Inc()
}

// IncScanRecorded increments the scan counter for the scanner type.
func (m *TraceabilityMetrics) IncScanRecorded(scannerType string) {
	if m == nil || m.scansRecorded == nil {
		return
	}
	m.scansRecorded.WithLabelValues(normalizeLabel(scannerType)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

// Package qrimage renders traceability payloads into scannable PNG data URLs.
package qrimage

import (
	"context"
	"encoding/base64"
	"encoding/json"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/agritrace/traceability-backend/internal/payload"
	"github.com/agritrace/traceability-backend/pkg/logger"
	"github.com/agritrace/traceability-backend/pkg/metrics"
)

const dataURLPrefix = "data:image/png;base64,"

// Result reports the rendered artifact and how much of the payload made it in.
type Result struct {
	// DataURL is the base64 PNG data URL, empty when both render attempts
	// failed.
	DataURL string
	// UsedCompact is true when the full payload exceeded encoder capacity
	// and the compact projection was rendered instead.
	UsedCompact bool
	// Degraded is true when no image could be produced at all. The batch is
	// still persisted; operators must reissue the artifact.
	Degraded bool
}

// Renderer encodes payload documents with fixed visual parameters chosen for
// scanner compatibility. Low error correction favors data capacity; codes are
// reprinted on controlled warehouse stock, not subject to wear.
type Renderer struct {
	sizePx  int
	logg    *logger.Logger
	metrics *metrics.TraceabilityMetrics
	encode  func(content string, size int) ([]byte, error)
}

// NewRenderer returns a Renderer producing sizePx-square images.
func NewRenderer(sizePx int, logg *logger.Logger, m *metrics.TraceabilityMetrics) *Renderer {
	if sizePx <= 0 {
		sizePx = 300
	}
	return &Renderer{
		sizePx:  sizePx,
		logg:    logg,
		metrics: m,
		encode: func(content string, size int) ([]byte, error) {
			return qrcode.Encode(content, qrcode.Low, size)
		},
	}
}

// Render serializes the document body and encodes it. On encoder failure
// (typically capacity overflow at low error correction) it retries with the
// compact projection; if that also fails it returns a degraded result rather
// than an error. Image generation never blocks batch creation.
func (r *Renderer) Render(ctx context.Context, doc *payload.Document, compact payload.CompactPayload) Result {
	full, err := json.Marshal(doc.Body)
	if err == nil {
		if png, encErr := r.encode(string(full), r.sizePx); encErr == nil {
			return Result{DataURL: dataURLPrefix + base64.StdEncoding.EncodeToString(png)}
		} else {
			err = encErr
		}
	}

	if r.logg != nil {
		ctx = r.logg.WithBatchCode(ctx, doc.BatchCode)
		r.logg.Warn(ctx, "full payload did not encode, retrying compact: "+err.Error())
	}
	r.metrics.IncQRFallback()

	compactJSON, err := json.Marshal(compact)
	if err == nil {
		if png, encErr := r.encode(string(compactJSON), r.sizePx); encErr == nil {
			return Result{
				DataURL:     dataURLPrefix + base64.StdEncoding.EncodeToString(png),
				UsedCompact: true,
			}
		} else {
			err = encErr
		}
	}

	if r.logg != nil {
		r.logg.Error(r.logg.WithBatchCode(ctx, doc.BatchCode), "compact payload did not encode, batch will persist without image", err)
	}
	r.metrics.IncQRFailure()
	return Result{Degraded: true}
}

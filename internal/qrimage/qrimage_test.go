package qrimage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agritrace/traceability-backend/internal/payload"
	"github.com/agritrace/traceability-backend/internal/signer"
	"github.com/agritrace/traceability-backend/pkg/types"
)

func buildDoc(t *testing.T, complianceData types.JSONMap) (*payload.Document, payload.CompactPayload) {
	t.Helper()
	builder := payload.NewBuilder(signer.NewStub(), "https://trace.agritrace.example.org",
		payload.WithClock(func() time.Time { return time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC) }))
	doc, err := builder.Build(payload.BuildInput{
		Kind:           payload.KindEnhanced,
		BatchCode:      "TXN-20250305-1234",
		WarehouseID:    "WH-001",
		CommodityType:  "cocoa",
		TotalPackages:  10,
		PackageWeight:  decimal.NewFromInt(50),
		ComplianceData: complianceData,
	})
	require.NoError(t, err)
	return doc, builder.Compact(doc.BatchCode, doc.Signature)
}

func TestRenderFullPayload(t *testing.T) {
	doc, compact := buildDoc(t, nil)
	r := NewRenderer(300, nil, nil)

	res := r.Render(context.Background(), doc, compact)
	assert.False(t, res.Degraded)
	assert.False(t, res.UsedCompact)
	assert.True(t, strings.HasPrefix(res.DataURL, "data:image/png;base64,"))
}

func TestRenderFallsBackToCompact(t *testing.T) {
	// QR version 40 at low EC tops out near 2953 bytes; an oversized
	// compliance blob forces the fallback.
	blob := types.JSONMap{"attachment": strings.Repeat("x", 4000)}
	doc, compact := buildDoc(t, blob)
	r := NewRenderer(300, nil, nil)

	res := r.Render(context.Background(), doc, compact)
	assert.False(t, res.Degraded)
	assert.True(t, res.UsedCompact)
	assert.True(t, strings.HasPrefix(res.DataURL, "data:image/png;base64,"))
}

func TestRenderDegradesWhenBothAttemptsFail(t *testing.T) {
	doc, compact := buildDoc(t, nil)
	r := NewRenderer(300, nil, nil)
	r.encode = func(string, int) ([]byte, error) {
		return nil, errors.New("content too long to encode")
	}

	res := r.Render(context.Background(), doc, compact)
	assert.True(t, res.Degraded)
	assert.False(t, res.UsedCompact)
	assert.Empty(t, res.DataURL)
}

func TestRendererDefaultsSize(t *testing.T) {
	r := NewRenderer(0, nil, nil)
	assert.Equal(t, 300, r.sizePx)
}

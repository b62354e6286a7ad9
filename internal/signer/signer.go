package signer

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Signer produces the tamper-evidence token embedded in QR payloads. The
// interface is the seam for swapping the stub for asymmetric signing without
// touching the payload builder.
type Signer interface {
	Sign(batchCode, warehouseID string, totalWeight decimal.Decimal, ts time.Time) string
}

// Stub derives a short non-cryptographic token from the canonical batch
// fields. It detects accidental payload edits only; it is not a security
// boundary and verification treats it as opaque.
type Stub struct{}

// NewStub returns the stub signer.
func NewStub() *Stub {
	return &Stub{}
}

const tokenLength = 16

// Sign encodes {batchCode, warehouseId, totalWeight, timestamp} as canonical
// JSON, base64s it, and keeps the first 16 characters.
func (s *Stub) Sign(batchCode, warehouseID string, totalWeight decimal.Decimal, ts time.Time) string {
	canonical := fmt.Sprintf(
		`{"batchCode":%q,"timestamp":%q,"totalWeight":%s,"warehouseId":%q}`,
		batchCode, ts.UTC().Format(time.RFC3339), totalWeight.String(), warehouseID,
	)
	token := base64.StdEncoding.EncodeToString([]byte(canonical))
	if len(token) > tokenLength {
		token = token[:tokenLength]
	}
	return token
}

// Package payload assembles the structured traceability record embedded in a
// batch QR code. Building is a pure transformation over caller-supplied facts;
// the only collaborator is the signature stub.
package payload

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/agritrace/traceability-backend/internal/registry"
	"github.com/agritrace/traceability-backend/internal/signer"
	pkgerrors "github.com/agritrace/traceability-backend/pkg/errors"
	"github.com/agritrace/traceability-backend/pkg/types"
)

// Kind selects the payload projection.
type Kind string

const (
	// KindEnhanced is the transaction-centric payload with the full
	// compliance, parties and traceability-chain sections.
	KindEnhanced Kind = "enhanced"
	// KindLegacy is the flatter bag-centric payload used by the older
	// warehouse flow. No chain, no product config echo.
	KindLegacy Kind = "legacy"
)

// BuildInput carries everything the builder may fold into a payload. Optional
// compliance blobs are passed through opaque; missing blobs get defaulted
// shapes rather than failing the build.
type BuildInput struct {
	Kind Kind

	BatchCode     string
	TransactionID string

	WarehouseID   string
	WarehouseName string
	BuyerID       string
	BuyerName     string
	FarmerID      string
	FarmerName    string

	CommodityType    string
	CommoditySubType string
	PackagingType    string
	TotalPackages    int
	PackageWeight    decimal.Decimal
	// ActualQuantity is the authoritative transaction quantity. When set it
	// wins over TotalPackages x PackageWeight, which is nominal.
	ActualQuantity *decimal.Decimal
	QualityGrade   string
	HarvestDate    time.Time
	ProcessingDate *time.Time

	GPSCoordinates    string
	WarehouseLocation string
	FarmPlotData      types.JSONMap

	InspectionData    types.JSONMap
	EUDRCompliance    types.JSONMap
	CertificationData types.JSONMap
	ComplianceData    types.JSONMap

	// DigitalSignature, when non-empty, is used as-is instead of invoking
	// the signer.
	DigitalSignature string

	// Variant echoes the product configuration into enhanced payloads and
	// supplies the shelf life used to derive the expiry date. Optional for
	// legacy payloads.
	Variant *registry.ProductVariant
}

// Document is a built payload plus the derived facts the orchestrator
// persists alongside it.
type Document struct {
	Kind            Kind
	BatchCode       string
	TotalWeight     decimal.Decimal
	ExpiryDate      *time.Time
	Signature       string
	VerificationURL string
	GeneratedAt     time.Time

	// Body is the JSON-marshalable payload object, shaped per Kind.
	Body any
}

// CompactPayload is the minimal 3-field projection used when the full payload
// will not encode into a scannable image. It carries no compliance data, only
// enough to resolve back to the stored record.
type CompactPayload struct {
	B string `json:"b"` // batch code
	V string `json:"v"` // signature tail
	T string `json:"t"` // build timestamp
}

// Builder folds inputs into payload documents.
type Builder struct {
	signer  signer.Signer
	baseURL string
	now     func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock overrides the build timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBuilder returns a Builder. baseURL is the public verification base, e.g.
// "https://trace.agritrace.example.org".
func NewBuilder(sig signer.Signer, baseURL string, opts ...Option) *Builder {
	b := &Builder{signer: sig, baseURL: baseURL, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build assembles the payload for input.Kind. It fails only when the identity
// fields are missing; absent optional sections are defaulted, never fatal.
func (b *Builder) Build(input BuildInput) (*Document, error) {
	if input.BatchCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "batch code is required")
	}
	if input.WarehouseID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse id is required")
	}
	if input.CommodityType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "commodity type is required")
	}

	now := b.now().UTC()
	totalWeight := b.totalWeight(input)
	expiry := b.expiryDate(input)
	verificationURL := fmt.Sprintf("%s/verify/%s", b.baseURL, input.BatchCode)

	sig := input.DigitalSignature
	if sig == "" && b.signer != nil {
		sig = b.signer.Sign(input.BatchCode, input.WarehouseID, totalWeight, now)
	}

	doc := &Document{
		Kind:            input.Kind,
		BatchCode:       input.BatchCode,
		TotalWeight:     totalWeight,
		ExpiryDate:      expiry,
		Signature:       sig,
		VerificationURL: verificationURL,
		GeneratedAt:     now,
	}

	verification := verificationBlock{
		QRCodeGenerated:  now.Format(time.RFC3339),
		DigitalSignature: sig,
		VerificationURL:  verificationURL,
	}

	switch input.Kind {
	case KindLegacy:
		doc.Body = b.buildLegacy(input, totalWeight, now, verification)
	default:
		doc.Kind = KindEnhanced
		doc.Body = b.buildEnhanced(input, totalWeight, expiry, now, verification)
	}
	return doc, nil
}

// Compact returns the fallback projection for a batch.
func (b *Builder) Compact(batchCode, signature string) CompactPayload {
	return CompactPayload{
		B: batchCode,
		V: signatureTail(signature),
		T: b.now().UTC().Format(time.RFC3339),
	}
}

const signatureTailLength = 8

func signatureTail(signature string) string {
	if len(signature) > signatureTailLength {
		return signature[len(signature)-signatureTailLength:]
	}
	return signature
}

func (b *Builder) totalWeight(input BuildInput) decimal.Decimal {
	if input.ActualQuantity != nil && input.ActualQuantity.IsPositive() {
		return *input.ActualQuantity
	}
	return input.PackageWeight.Mul(decimal.NewFromInt(int64(input.TotalPackages)))
}

func (b *Builder) expiryDate(input BuildInput) *time.Time {
	if input.ProcessingDate == nil || input.Variant == nil || input.Variant.ShelfLifeDays <= 0 {
		return nil
	}
	expiry := input.ProcessingDate.AddDate(0, 0, input.Variant.ShelfLifeDays)
	return &expiry
}

package payload

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agritrace/traceability-backend/internal/registry"
	"github.com/agritrace/traceability-backend/internal/signer"
	"github.com/agritrace/traceability-backend/pkg/types"
)

const testBaseURL = "https://trace.agritrace.example.org"

func testClock() time.Time {
	return time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
}

func testVariant(t *testing.T) *registry.ProductVariant {
	t.Helper()
	variant, err := registry.New().Variant("cocoa", "premium_cocoa")
	require.NoError(t, err)
	return &variant
}

func baseInput(t *testing.T) BuildInput {
	return BuildInput{
		Kind:          KindEnhanced,
		BatchCode:     "TXN-20250305-1234",
		TransactionID: "txn-abcdef1234",
		WarehouseID:   "WH-001",
		WarehouseName: "Gbarnga Central Warehouse",
		BuyerID:       "BUY-007",
		BuyerName:     "Atlantic Commodities",
		FarmerID:      "FRM-214",
		FarmerName:    "Moses Kollie",
		CommodityType: "cocoa",
		CommoditySubType: "premium_cocoa",
		PackagingType: "jute_bags",
		TotalPackages: 10,
		PackageWeight: decimal.NewFromInt(50),
		QualityGrade:  "Grade I",
		HarvestDate:   time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC),
		Variant:       testVariant(t),
	}
}

func newTestBuilder() *Builder {
	return NewBuilder(signer.NewStub(), testBaseURL, WithClock(testClock))
}

func TestBuildComputesNominalTotalWeight(t *testing.T) {
	doc, err := newTestBuilder().Build(baseInput(t))
	require.NoError(t, err)
	assert.True(t, doc.TotalWeight.Equal(decimal.NewFromInt(500)), "got %s", doc.TotalWeight)
}

func TestActualQuantityOverridesArithmetic(t *testing.T) {
	input := baseInput(t)
	actual := decimal.NewFromFloat(487.5)
	input.ActualQuantity = &actual

	doc, err := newTestBuilder().Build(input)
	require.NoError(t, err)
	assert.True(t, doc.TotalWeight.Equal(actual))
}

func TestNonPositiveActualQuantityIgnored(t *testing.T) {
	input := baseInput(t)
	zero := decimal.Zero
	input.ActualQuantity = &zero

	doc, err := newTestBuilder().Build(input)
	require.NoError(t, err)
	assert.True(t, doc.TotalWeight.Equal(decimal.NewFromInt(500)))
}

func TestExpiryDerivedFromProcessingDate(t *testing.T) {
	input := baseInput(t)
	processing := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	input.ProcessingDate = &processing

	doc, err := newTestBuilder().Build(input)
	require.NoError(t, err)
	require.NotNil(t, doc.ExpiryDate)
	// premium cocoa shelf life is 365 days
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *doc.ExpiryDate)
}

func TestExpiryAbsentWithoutProcessingDate(t *testing.T) {
	doc, err := newTestBuilder().Build(baseInput(t))
	require.NoError(t, err)
	assert.Nil(t, doc.ExpiryDate)
}

func TestVerificationBlock(t *testing.T) {
	doc, err := newTestBuilder().Build(baseInput(t))
	require.NoError(t, err)
	assert.Equal(t, testBaseURL+"/verify/TXN-20250305-1234", doc.VerificationURL)
	assert.Len(t, doc.Signature, 16)

	raw, err := json.Marshal(doc.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	verification, ok := decoded["verification"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, doc.VerificationURL, verification["verificationUrl"])
	assert.Equal(t, doc.Signature, verification["digitalSignature"])
}

func TestCallerSignatureWins(t *testing.T) {
	input := baseInput(t)
	input.DigitalSignature = "PRESIGNEDTOKEN00"

	doc, err := newTestBuilder().Build(input)
	require.NoError(t, err)
	assert.Equal(t, "PRESIGNEDTOKEN00", doc.Signature)
}

func TestMissingBlobsGetDefaultedShapes(t *testing.T) {
	doc, err := newTestBuilder().Build(baseInput(t))
	require.NoError(t, err)

	raw, err := json.Marshal(doc.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	eudr, ok := decoded["eudr"].(map[string]any)
	require.True(t, ok)
	bodies, ok := eudr["certificationBodies"].([]any)
	require.True(t, ok)
	assert.Empty(t, bodies)

	inspection, ok := decoded["inspection"].(map[string]any)
	require.True(t, ok)
	_, ok = inspection["certifications"]
	assert.True(t, ok)
}

func TestSuppliedBlobsPassThroughUnmodified(t *testing.T) {
	input := baseInput(t)
	input.EUDRCompliance = types.JSONMap{
		"compliant":           true,
		"riskLevel":           "low",
		"certificationBodies": []any{"LACRA"},
	}

	doc, err := newTestBuilder().Build(input)
	require.NoError(t, err)

	raw, err := json.Marshal(doc.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	eudr := decoded["eudr"].(map[string]any)
	assert.Equal(t, true, eudr["compliant"])
	assert.Equal(t, []any{"LACRA"}, eudr["certificationBodies"])

	// input blob must not be mutated
	assert.Len(t, input.EUDRCompliance, 3)
}

func TestBuildFailsOnlyOnMissingIdentity(t *testing.T) {
	b := newTestBuilder()

	input := baseInput(t)
	input.BatchCode = ""
	_, err := b.Build(input)
	assert.Error(t, err)

	input = baseInput(t)
	input.WarehouseID = ""
	_, err = b.Build(input)
	assert.Error(t, err)

	input = baseInput(t)
	input.CommodityType = ""
	_, err = b.Build(input)
	assert.Error(t, err)

	// everything else optional
	input = BuildInput{
		Kind:          KindEnhanced,
		BatchCode:     "WH-BATCH-20250305-ZZZZ",
		WarehouseID:   "WH-002",
		CommodityType: "coffee",
	}
	_, err = b.Build(input)
	assert.NoError(t, err)
}

func TestLegacyShapeOmitsChainAndEchoes(t *testing.T) {
	input := baseInput(t)
	input.Kind = KindLegacy
	input.BatchCode = "WH-BATCH-20250305-AB12"

	doc, err := newTestBuilder().Build(input)
	require.NoError(t, err)
	assert.Equal(t, KindLegacy, doc.Kind)

	raw, err := json.Marshal(doc.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	_, hasChain := decoded["traceability"]
	assert.False(t, hasChain)
	packaging := decoded["packaging"].(map[string]any)
	_, hasBags := packaging["totalBags"]
	assert.True(t, hasBags)
}

func TestEnhancedChainHasFarmAndWarehouseStages(t *testing.T) {
	doc, err := newTestBuilder().Build(baseInput(t))
	require.NoError(t, err)

	raw, err := json.Marshal(doc.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	traceability := decoded["traceability"].(map[string]any)
	chain := traceability["chain"].([]any)
	require.Len(t, chain, 2)
	assert.Equal(t, "farm", chain[0].(map[string]any)["stage"])
	assert.Equal(t, "warehouse", chain[1].(map[string]any)["stage"])
}

func TestCompactProjection(t *testing.T) {
	b := newTestBuilder()
	compact := b.Compact("WH-BATCH-20250305-AB12", "U0lHTkFUVVJFMDAw")
	assert.Equal(t, "WH-BATCH-20250305-AB12", compact.B)
	assert.Equal(t, "VVJFMDAw", compact.V)
	assert.Equal(t, "2025-03-05T10:00:00Z", compact.T)
}

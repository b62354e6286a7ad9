package payload

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/agritrace/traceability-backend/internal/registry"
	"github.com/agritrace/traceability-backend/pkg/types"
)

// enhancedPayload is the transaction-centric record embedded behind a QR code.
type enhancedPayload struct {
	BatchCode     string `json:"batchCode"`
	TransactionID string `json:"transactionId,omitempty"`
	WarehouseID   string `json:"warehouseId"`
	WarehouseName string `json:"warehouseName,omitempty"`

	Product       productBlock   `json:"product"`
	Packaging     packagingBlock `json:"packaging"`
	Inspection    types.JSONMap  `json:"inspection"`
	EUDR          types.JSONMap  `json:"eudr"`
	Certification types.JSONMap  `json:"certification"`
	Compliance    types.JSONMap  `json:"compliance"`
	Parties       partiesBlock   `json:"parties"`

	Traceability traceabilityBlock `json:"traceability"`
	Verification verificationBlock `json:"verification"`
}

// legacyPayload is the flatter bag-centric record retained for the older
// warehouse flow.
type legacyPayload struct {
	BatchCode     string `json:"batchCode"`
	WarehouseID   string `json:"warehouseId"`
	WarehouseName string `json:"warehouseName,omitempty"`

	Product    legacyProductBlock `json:"product"`
	Inspection types.JSONMap      `json:"inspection"`
	EUDR       types.JSONMap      `json:"eudr"`
	Buyer      buyerBlock         `json:"buyer"`
	Packaging  bagPackagingBlock  `json:"packaging"`

	Verification verificationBlock `json:"verification"`
}

type productBlock struct {
	Type                string                        `json:"type"`
	SubType             string                        `json:"subType,omitempty"`
	Name                string                        `json:"name,omitempty"`
	HSCode              string                        `json:"hsCode,omitempty"`
	QualityGrade        string                        `json:"qualityGrade,omitempty"`
	HarvestDate         string                        `json:"harvestDate,omitempty"`
	ProcessingDate      string                        `json:"processingDate,omitempty"`
	ExpiryDate          string                        `json:"expiryDate,omitempty"`
	StorageRequirements *registry.StorageRequirements `json:"storageRequirements,omitempty"`
	Origin              originBlock                   `json:"origin"`
}

type legacyProductBlock struct {
	Type         string      `json:"type"`
	QualityGrade string      `json:"qualityGrade,omitempty"`
	HarvestDate  string      `json:"harvestDate,omitempty"`
	Origin       originBlock `json:"origin"`
}

type originBlock struct {
	FarmerID string        `json:"farmerId,omitempty"`
	Farmer   string        `json:"farmer,omitempty"`
	Location string        `json:"location,omitempty"`
	FarmPlot types.JSONMap `json:"farmPlot,omitempty"`
}

type packagingBlock struct {
	Type          string          `json:"type"`
	TotalPackages int             `json:"totalPackages"`
	PackageWeight decimal.Decimal `json:"packageWeight"`
	TotalWeight   decimal.Decimal `json:"totalWeight"`
	PackagingDate string          `json:"packagingDate"`
}

type bagPackagingBlock struct {
	TotalBags     int             `json:"totalBags"`
	BagWeight     decimal.Decimal `json:"bagWeight"`
	TotalWeight   decimal.Decimal `json:"totalWeight"`
	BagType       string          `json:"bagType"`
	PackagingDate string          `json:"packagingDate"`
}

type partiesBlock struct {
	BuyerID     string `json:"buyerId,omitempty"`
	BuyerName   string `json:"buyerName,omitempty"`
	FarmerID    string `json:"farmerId,omitempty"`
	FarmerName  string `json:"farmerName,omitempty"`
	RequestDate string `json:"requestDate"`
}

type buyerBlock struct {
	BuyerID     string `json:"buyerId,omitempty"`
	BuyerName   string `json:"buyerName,omitempty"`
	RequestDate string `json:"requestDate"`
}

type traceabilityBlock struct {
	WarehouseLocation string      `json:"warehouseLocation,omitempty"`
	Chain             []chainLink `json:"chain"`
}

type chainLink struct {
	Stage     string `json:"stage"`
	ActorID   string `json:"actorId,omitempty"`
	ActorName string `json:"actorName,omitempty"`
	Location  string `json:"location,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

type verificationBlock struct {
	QRCodeGenerated  string `json:"qrCodeGenerated"`
	DigitalSignature string `json:"digitalSignature"`
	VerificationURL  string `json:"verificationUrl"`
}

func (b *Builder) buildEnhanced(input BuildInput, totalWeight decimal.Decimal, expiry *time.Time, now time.Time, verification verificationBlock) enhancedPayload {
	product := productBlock{
		Type:         input.CommodityType,
		SubType:      input.CommoditySubType,
		QualityGrade: input.QualityGrade,
		Origin: originBlock{
			FarmerID: input.FarmerID,
			Farmer:   input.FarmerName,
			Location: input.GPSCoordinates,
			FarmPlot: input.FarmPlotData,
		},
	}
	if !input.HarvestDate.IsZero() {
		product.HarvestDate = input.HarvestDate.UTC().Format(time.RFC3339)
	}
	if input.ProcessingDate != nil {
		product.ProcessingDate = input.ProcessingDate.UTC().Format(time.RFC3339)
	}
	if expiry != nil {
		product.ExpiryDate = expiry.UTC().Format(time.RFC3339)
	}
	if input.Variant != nil {
		product.Name = input.Variant.ProductName
		product.HSCode = input.Variant.HSCode
		reqs := input.Variant.StorageRequirements
		product.StorageRequirements = &reqs
	}

	chain := []chainLink{
		{
			Stage:     "farm",
			ActorID:   input.FarmerID,
			ActorName: input.FarmerName,
			Location:  input.GPSCoordinates,
			Timestamp: product.HarvestDate,
		},
		{
			Stage:     "warehouse",
			ActorID:   input.WarehouseID,
			ActorName: input.WarehouseName,
			Location:  input.WarehouseLocation,
			Timestamp: now.Format(time.RFC3339),
		},
	}

	return enhancedPayload{
		BatchCode:     input.BatchCode,
		TransactionID: input.TransactionID,
		WarehouseID:   input.WarehouseID,
		WarehouseName: input.WarehouseName,
		Product:       product,
		Packaging: packagingBlock{
			Type:          input.PackagingType,
			TotalPackages: input.TotalPackages,
			PackageWeight: input.PackageWeight,
			TotalWeight:   totalWeight,
			PackagingDate: now.Format(time.RFC3339),
		},
		Inspection:    defaultedBlob(input.InspectionData, "certifications"),
		EUDR:          defaultedBlob(input.EUDRCompliance, "certificationBodies"),
		Certification: defaultedBlob(input.CertificationData),
		Compliance:    defaultedBlob(input.ComplianceData),
		Parties: partiesBlock{
			BuyerID:     input.BuyerID,
			BuyerName:   input.BuyerName,
			FarmerID:    input.FarmerID,
			FarmerName:  input.FarmerName,
			RequestDate: now.Format(time.RFC3339),
		},
		Traceability: traceabilityBlock{
			WarehouseLocation: input.WarehouseLocation,
			Chain:             chain,
		},
		Verification: verification,
	}
}

func (b *Builder) buildLegacy(input BuildInput, totalWeight decimal.Decimal, now time.Time, verification verificationBlock) legacyPayload {
	bagType := input.PackagingType
	if bagType == "" {
		bagType = "Jute"
	}
	product := legacyProductBlock{
		Type:         input.CommodityType,
		QualityGrade: input.QualityGrade,
		Origin: originBlock{
			FarmerID: input.FarmerID,
			Farmer:   input.FarmerName,
			Location: input.GPSCoordinates,
		},
	}
	if !input.HarvestDate.IsZero() {
		product.HarvestDate = input.HarvestDate.UTC().Format(time.RFC3339)
	}
	return legacyPayload{
		BatchCode:     input.BatchCode,
		WarehouseID:   input.WarehouseID,
		WarehouseName: input.WarehouseName,
		Product:       product,
		Inspection:    defaultedBlob(input.InspectionData, "certifications"),
		EUDR:          defaultedBlob(input.EUDRCompliance, "certificationBodies"),
		Buyer: buyerBlock{
			BuyerID:     input.BuyerID,
			BuyerName:   input.BuyerName,
			RequestDate: now.Format(time.RFC3339),
		},
		Packaging: bagPackagingBlock{
			TotalBags:     input.TotalPackages,
			BagWeight:     input.PackageWeight,
			TotalWeight:   totalWeight,
			BagType:       bagType,
			PackagingDate: now.Format(time.RFC3339),
		},
		Verification: verification,
	}
}

// defaultedBlob clones the blob so later payload edits cannot alias caller
// state, and ensures the named list keys exist with empty-list defaults.
func defaultedBlob(blob types.JSONMap, listKeys ...string) types.JSONMap {
	out := blob.Clone()
	if out == nil {
		out = types.JSONMap{}
	}
	for _, key := range listKeys {
		if _, ok := out[key]; !ok {
			out[key] = []any{}
		}
	}
	return out
}

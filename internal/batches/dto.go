package batches

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/agritrace/traceability-backend/internal/registry"
	"github.com/agritrace/traceability-backend/pkg/db/models"
	"github.com/agritrace/traceability-backend/pkg/types"
)

// CreateFromTransactionInput is the validated payload for the
// transaction-driven creation flow.
type CreateFromTransactionInput struct {
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
	// ActualQuantity is the authoritative transaction quantity in kg; when
	// set it overrides TotalPackages x PackageWeight.
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
}

// CreateWithInventoryInput is the validated payload for the legacy
// bag-oriented creation flow.
type CreateWithInventoryInput struct {
	WarehouseID   string
	WarehouseName string
	BuyerID       string
	BuyerName     string
	FarmerID      string
	FarmerName    string

	CommodityType    string
	CommoditySubType string
	PackagingType    string
	TotalBags        int
	BagWeight        decimal.Decimal
	QualityGrade     string
	HarvestDate      time.Time

	InspectionData types.JSONMap
	EUDRCompliance types.JSONMap

	GPSCoordinates  string
	StorageLocation string
	CheckedBy       string
}

// CreationResult is the always-returned outcome of a creation flow. Failures
// are values, never panics or escaped errors.
type CreationResult struct {
	Success bool `json:"success"`

	BatchCode     string                         `json:"batchCode,omitempty"`
	Batch         *models.Batch                  `json:"batch,omitempty"`
	Inventory     *models.WarehouseBagInventory  `json:"inventory,omitempty"`
	QRCodeURL     string                         `json:"qrCodeUrl,omitempty"`
	QRDegraded    bool                           `json:"qrDegraded,omitempty"`
	ProductConfig *registry.ProductVariant       `json:"productConfig,omitempty"`
	Message       string                         `json:"message,omitempty"`

	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

func failure(errMsg, details string) CreationResult {
	return CreationResult{Success: false, Error: errMsg, Details: details}
}

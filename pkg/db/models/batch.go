package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agritrace/traceability-backend/pkg/enums"
	"github.com/agritrace/traceability-backend/pkg/types"
)

// Batch is the aggregate root of the traceability chain: one packaged lot of
// commodity bound to its provenance record and QR artifacts. Created once at
// batch-creation time and immutable afterwards; scan/inventory history hangs
// off batch_code.
type Batch struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BatchCode     string    `gorm:"column:batch_code;not null;uniqueIndex:batches_batch_code_key"`
	TransactionID *string   `gorm:"column:transaction_id;uniqueIndex:batches_transaction_id_key"`

	WarehouseID   string `gorm:"column:warehouse_id;not null"`
	WarehouseName string `gorm:"column:warehouse_name;not null"`
	BuyerID       string `gorm:"column:buyer_id"`
	BuyerName     string `gorm:"column:buyer_name"`
	FarmerID      string `gorm:"column:farmer_id"`
	FarmerName    string `gorm:"column:farmer_name"`

	CommodityType    string          `gorm:"column:commodity_type;not null"`
	CommoditySubType string          `gorm:"column:commodity_sub_type"`
	PackagingType    string          `gorm:"column:packaging_type;not null"`
	TotalPackages    int             `gorm:"column:total_packages;not null"`
	PackageWeight    decimal.Decimal `gorm:"column:package_weight;type:numeric(12,2);not null"`
	TotalWeight      decimal.Decimal `gorm:"column:total_weight;type:numeric(14,2);not null"`
	QualityGrade     string          `gorm:"column:quality_grade"`
	HarvestDate      time.Time       `gorm:"column:harvest_date"`
	ProcessingDate   *time.Time      `gorm:"column:processing_date"`
	ExpiryDate       *time.Time      `gorm:"column:expiry_date"`

	InspectionData    types.JSONMap `gorm:"column:inspection_data;type:jsonb"`
	EUDRCompliance    types.JSONMap `gorm:"column:eudr_compliance;type:jsonb"`
	CertificationData types.JSONMap `gorm:"column:certification_data;type:jsonb"`
	ComplianceData    types.JSONMap `gorm:"column:compliance_data;type:jsonb"`

	GPSCoordinates    string        `gorm:"column:gps_coordinates"`
	WarehouseLocation string        `gorm:"column:warehouse_location"`
	FarmPlotData      types.JSONMap `gorm:"column:farm_plot_data;type:jsonb"`

	QRCodeData       json.RawMessage `gorm:"column:qr_code_data;type:jsonb"`
	QRCodeURL        *string         `gorm:"column:qr_code_url"`
	DigitalSignature string          `gorm:"column:digital_signature"`

	Status    enums.BatchStatus `gorm:"column:status;not null;default:generated"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides GORM's pluralization.
func (Batch) TableName() string {
	return "batches"
}

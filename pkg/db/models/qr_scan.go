package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/agritrace/traceability-backend/pkg/enums"
)

// QrScan is an append-only record of one verification event. Recording who
// scanned and from where is itself a compliance signal, so rows are never
// mutated or deleted.
type QrScan struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BatchCode       string            `gorm:"column:batch_code;not null;index:qr_scans_batch_code_idx"`
	ScannedBy       string            `gorm:"column:scanned_by"`
	ScannerType     enums.ScannerType `gorm:"column:scanner_type;not null"`
	ScanLocation    string            `gorm:"column:scan_location"`
	ScanCoordinates string            `gorm:"column:scan_coordinates"`
	DeviceInfo      string            `gorm:"column:device_info"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides GORM's pluralization.
func (QrScan) TableName() string {
	return "qr_scans"
}

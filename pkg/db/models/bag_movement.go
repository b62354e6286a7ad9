package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/agritrace/traceability-backend/pkg/enums"
)

// BagMovement is an append-only ledger entry for bag custody changes.
type BagMovement struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WarehouseID  string             `gorm:"column:warehouse_id;not null"`
	BatchCode    string             `gorm:"column:batch_code;not null;index:bag_movements_batch_code_idx"`
	MovementType enums.MovementType `gorm:"column:movement_type;not null"`
	Quantity     int                `gorm:"column:quantity;not null"`
	AuthorizedBy string             `gorm:"column:authorized_by"`
	Reason       string             `gorm:"column:reason"`
	Notes        string             `gorm:"column:notes"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides GORM's pluralization.
func (BagMovement) TableName() string {
	return "bag_movements"
}

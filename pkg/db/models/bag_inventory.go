package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/agritrace/traceability-backend/pkg/enums"
	"github.com/agritrace/traceability-backend/pkg/types"
)

// WarehouseBagInventory tracks the bag partition for a legacy bag-oriented
// batch. Invariant: available + reserved + distributed + damaged == total.
type WarehouseBagInventory struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WarehouseID   string    `gorm:"column:warehouse_id;not null"`
	WarehouseName string    `gorm:"column:warehouse_name"`
	BatchCode     string    `gorm:"column:batch_code;not null;uniqueIndex:warehouse_bag_inventory_batch_code_key"`

	BagType string `gorm:"column:bag_type"`
	BagSize string `gorm:"column:bag_size"`

	TotalBags       int `gorm:"column:total_bags;not null"`
	AvailableBags   int `gorm:"column:available_bags;not null"`
	ReservedBags    int `gorm:"column:reserved_bags;not null;default:0"`
	DistributedBags int `gorm:"column:distributed_bags;not null;default:0"`
	DamagedBags     int `gorm:"column:damaged_bags;not null;default:0"`

	Location          string        `gorm:"column:location"`
	StorageConditions types.JSONMap `gorm:"column:storage_conditions;type:jsonb"`
	CheckedBy         string        `gorm:"column:checked_by"`
	ReorderLevel      int           `gorm:"column:reorder_level;not null;default:0"`
	MaxCapacity       int           `gorm:"column:max_capacity;not null;default:0"`

	Status    enums.BagInventoryStatus `gorm:"column:status;not null;default:available"`
	CreatedAt time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides GORM's pluralization.
func (WarehouseBagInventory) TableName() string {
	return "warehouse_bag_inventory"
}

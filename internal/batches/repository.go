package batches

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/agritrace/traceability-backend/pkg/db/models"
	pkgerrors "github.com/agritrace/traceability-backend/pkg/errors"
)

// Repository defines persistence operations for batches and their custody
// history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateBatch(ctx context.Context, batch *models.Batch) (*models.Batch, error)
	GetBatchByCode(ctx context.Context, batchCode string) (*models.Batch, error)

	CreateInventory(ctx context.Context, inventory *models.WarehouseBagInventory) (*models.WarehouseBagInventory, error)
	GetInventoryByBatch(ctx context.Context, batchCode string) (*models.WarehouseBagInventory, error)

	CreateMovement(ctx context.Context, movement *models.BagMovement) error
	ListMovementsByBatch(ctx context.Context, batchCode string) ([]models.BagMovement, error)

	CreateScan(ctx context.Context, scan *models.QrScan) (*models.QrScan, error)
	ListScansByBatch(ctx context.Context, batchCode string) ([]models.QrScan, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *gormRepository) WithTx(tx *gorm.DB) Repository {
	return &gormRepository{db: tx}
}

func (r *gormRepository) CreateBatch(ctx context.Context, batch *models.Batch) (*models.Batch, error) {
	if err := r.db.WithContext(ctx).Create(batch).Error; err != nil {
		return nil, fmt.Errorf("creating batch: %w", err)
	}
	return batch, nil
}

func (r *gormRepository) GetBatchByCode(ctx context.Context, batchCode string) (*models.Batch, error) {
	var batch models.Batch
	err := r.db.WithContext(ctx).Where("batch_code = ?", batchCode).First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("batch %s not found", batchCode))
		}
		return nil, fmt.Errorf("fetching batch %s: %w", batchCode, err)
	}
	return &batch, nil
}

func (r *gormRepository) CreateInventory(ctx context.Context, inventory *models.WarehouseBagInventory) (*models.WarehouseBagInventory, error) {
	if err := r.db.WithContext(ctx).Create(inventory).Error; err != nil {
		return nil, fmt.Errorf("creating bag inventory: %w", err)
	}
	return inventory, nil
}

// GetInventoryByBatch returns nil without error when the batch has no
// inventory row; only legacy bag-oriented batches carry one.
func (r *gormRepository) GetInventoryByBatch(ctx context.Context, batchCode string) (*models.WarehouseBagInventory, error) {
	var inventory models.WarehouseBagInventory
	err := r.db.WithContext(ctx).Where("batch_code = ?", batchCode).First(&inventory).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching bag inventory for %s: %w", batchCode, err)
	}
	return &inventory, nil
}

func (r *gormRepository) CreateMovement(ctx context.Context, movement *models.BagMovement) error {
	if err := r.db.WithContext(ctx).Create(movement).Error; err != nil {
		return fmt.Errorf("creating bag movement: %w", err)
	}
	return nil
}

func (r *gormRepository) ListMovementsByBatch(ctx context.Context, batchCode string) ([]models.BagMovement, error) {
	var movements []models.BagMovement
	err := r.db.WithContext(ctx).
		Where("batch_code = ?", batchCode).
		Order("created_at ASC").
		Find(&movements).Error
	if err != nil {
		return nil, fmt.Errorf("listing bag movements for %s: %w", batchCode, err)
	}
	return movements, nil
}

func (r *gormRepository) CreateScan(ctx context.Context, scan *models.QrScan) (*models.QrScan, error) {
	if err := r.db.WithContext(ctx).Create(scan).Error; err != nil {
		return nil, fmt.Errorf("creating qr scan: %w", err)
	}
	return scan, nil
}

func (r *gormRepository) ListScansByBatch(ctx context.Context, batchCode string) ([]models.QrScan, error) {
	var scans []models.QrScan
	err := r.db.WithContext(ctx).
		Where("batch_code = ?", batchCode).
		Order("created_at ASC").
		Find(&scans).Error
	if err != nil {
		return nil, fmt.Errorf("listing qr scans for %s: %w", batchCode, err)
	}
	return scans, nil
}

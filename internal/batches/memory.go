package batches

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agritrace/traceability-backend/pkg/db/models"
	pkgerrors "github.com/agritrace/traceability-backend/pkg/errors"
)

// MemoryRepository is an in-process Repository used by tests and by the
// sqlite-less local dev mode. It enforces the same uniqueness rules as the
// real schema so collision handling can be exercised without a database.
type MemoryRepository struct {
	mu           sync.Mutex
	batches      map[string]*models.Batch
	transactions map[string]string
	inventory    map[string]*models.WarehouseBagInventory
	movements    []models.BagMovement
	scans        []models.QrScan
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		batches:      map[string]*models.Batch{},
		transactions: map[string]string{},
		inventory:    map[string]*models.WarehouseBagInventory{},
	}
}

// WithTx returns the repository unchanged; the in-memory store has no
// transactional isolation. Pair with NopTxRunner.
func (m *MemoryRepository) WithTx(_ *gorm.DB) Repository { return m }

func (m *MemoryRepository) CreateBatch(_ context.Context, batch *models.Batch) (*models.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.batches[batch.BatchCode]; exists {
		return nil, fmt.Errorf(`duplicate key value violates unique constraint "batches_batch_code_key"`)
	}
	if batch.TransactionID != nil {
		if _, exists := m.transactions[*batch.TransactionID]; exists {
			return nil, fmt.Errorf(`duplicate key value violates unique constraint "batches_transaction_id_key"`)
		}
		m.transactions[*batch.TransactionID] = batch.BatchCode
	}
	if batch.ID == uuid.Nil {
		batch.ID = uuid.New()
	}
	now := time.Now().UTC()
	batch.CreatedAt = now
	batch.UpdatedAt = now
	m.batches[batch.BatchCode] = batch
	return batch, nil
}

func (m *MemoryRepository) GetBatchByCode(_ context.Context, batchCode string) (*models.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	batch, ok := m.batches[batchCode]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("batch %s not found", batchCode))
	}
	copied := *batch
	return &copied, nil
}

func (m *MemoryRepository) CreateInventory(_ context.Context, inventory *models.WarehouseBagInventory) (*models.WarehouseBagInventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.inventory[inventory.BatchCode]; exists {
		return nil, fmt.Errorf(`duplicate key value violates unique constraint "warehouse_bag_inventory_batch_code_key"`)
	}
	if inventory.ID == uuid.Nil {
		inventory.ID = uuid.New()
	}
	m.inventory[inventory.BatchCode] = inventory
	return inventory, nil
}

func (m *MemoryRepository) GetInventoryByBatch(_ context.Context, batchCode string) (*models.WarehouseBagInventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inventory, ok := m.inventory[batchCode]
	if !ok {
		return nil, nil
	}
	copied := *inventory
	return &copied, nil
}

func (m *MemoryRepository) CreateMovement(_ context.Context, movement *models.BagMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	movement.CreatedAt = time.Now().UTC()
	m.movements = append(m.movements, *movement)
	return nil
}

func (m *MemoryRepository) ListMovementsByBatch(_ context.Context, batchCode string) ([]models.BagMovement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.BagMovement
	for _, movement := range m.movements {
		if movement.BatchCode == batchCode {
			out = append(out, movement)
		}
	}
	return out, nil
}

func (m *MemoryRepository) CreateScan(_ context.Context, scan *models.QrScan) (*models.QrScan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if scan.ID == uuid.Nil {
		scan.ID = uuid.New()
	}
	scan.CreatedAt = time.Now().UTC()
	m.scans = append(m.scans, *scan)
	return scan, nil
}

func (m *MemoryRepository) ListScansByBatch(_ context.Context, batchCode string) ([]models.QrScan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.QrScan
	for _, scan := range m.scans {
		if scan.BatchCode == batchCode {
			out = append(out, scan)
		}
	}
	return out, nil
}

// NopTxRunner runs the function directly with no transaction. Used with
// MemoryRepository, which has no rollback semantics.
type NopTxRunner struct{}

// WithTx invokes fn with a nil transaction handle.
func (NopTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

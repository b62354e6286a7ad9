package batches

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/agritrace/traceability-backend/internal/batchcode"
	"github.com/agritrace/traceability-backend/internal/payload"
	"github.com/agritrace/traceability-backend/internal/qrimage"
	"github.com/agritrace/traceability-backend/internal/registry"
	"github.com/agritrace/traceability-backend/internal/signer"
	"github.com/agritrace/traceability-backend/pkg/db/models"
	"github.com/agritrace/traceability-backend/pkg/enums"
)

// stubRepo keeps persisted rows in memory and can inject failures keyed by
// call site. The same instance is reused across WithTx so rollback behavior
// is emulated explicitly via snapshots.
type stubRepo struct {
	batches    map[string]*models.Batch
	inventory  map[string]*models.WarehouseBagInventory
	movements  []models.BagMovement
	scans      []models.QrScan
	batchErrs  []error
	invErr     error
	moveErr    error
	inTx       bool
	txRollback func()
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		batches:   map[string]*models.Batch{},
		inventory: map[string]*models.WarehouseBagInventory{},
	}
}

func (s *stubRepo) WithTx(_ *gorm.DB) Repository { return s }

func (s *stubRepo) CreateBatch(_ context.Context, batch *models.Batch) (*models.Batch, error) {
	if len(s.batchErrs) > 0 {
		err := s.batchErrs[0]
		s.batchErrs = s.batchErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if _, exists := s.batches[batch.BatchCode]; exists {
		return nil, errors.New(`duplicate key value violates unique constraint "batches_batch_code_key"`)
	}
	s.batches[batch.BatchCode] = batch
	return batch, nil
}

func (s *stubRepo) GetBatchByCode(_ context.Context, code string) (*models.Batch, error) {
	batch, ok := s.batches[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return batch, nil
}

func (s *stubRepo) CreateInventory(_ context.Context, inv *models.WarehouseBagInventory) (*models.WarehouseBagInventory, error) {
	if s.invErr != nil {
		return nil, s.invErr
	}
	s.inventory[inv.BatchCode] = inv
	return inv, nil
}

func (s *stubRepo) GetInventoryByBatch(_ context.Context, code string) (*models.WarehouseBagInventory, error) {
	return s.inventory[code], nil
}

func (s *stubRepo) CreateMovement(_ context.Context, m *models.BagMovement) error {
	if s.moveErr != nil {
		return s.moveErr
	}
	s.movements = append(s.movements, *m)
	return nil
}

func (s *stubRepo) ListMovementsByBatch(_ context.Context, code string) ([]models.BagMovement, error) {
	var out []models.BagMovement
	for _, m := range s.movements {
		if m.BatchCode == code {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubRepo) CreateScan(_ context.Context, scan *models.QrScan) (*models.QrScan, error) {
	s.scans = append(s.scans, *scan)
	return scan, nil
}

func (s *stubRepo) ListScansByBatch(_ context.Context, code string) ([]models.QrScan, error) {
	var out []models.QrScan
	for _, sc := range s.scans {
		if sc.BatchCode == code {
			out = append(out, sc)
		}
	}
	return out, nil
}

// stubTx mimics the transaction runner: on error it restores the repo to its
// pre-transaction snapshot so partial writes do not leak out.
type stubTx struct {
	repo *stubRepo
}

func (t *stubTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	snapshotBatches := map[string]*models.Batch{}
	for k, v := range t.repo.batches {
		snapshotBatches[k] = v
	}
	snapshotInventory := map[string]*models.WarehouseBagInventory{}
	for k, v := range t.repo.inventory {
		snapshotInventory[k] = v
	}
	snapshotMovements := append([]models.BagMovement(nil), t.repo.movements...)

	if err := fn(nil); err != nil {
		t.repo.batches = snapshotBatches
		t.repo.inventory = snapshotInventory
		t.repo.movements = snapshotMovements
		return err
	}
	return nil
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T, repo *stubRepo) Service {
	t.Helper()
	builder := payload.NewBuilder(signer.NewStub(), "https://trace.agritrace.example.org",
		payload.WithClock(fixedClock))
	codes := batchcode.NewGenerator(
		batchcode.WithClock(fixedClock),
		batchcode.WithRand(rand.New(rand.NewSource(7))),
	)
	svc, err := NewService(
		repo,
		registry.New(),
		codes,
		builder,
		qrimage.NewRenderer(300, nil, nil),
		&stubTx{repo: repo},
		nil,
		nil,
		3,
	)
	require.NoError(t, err)
	return svc
}

func transactionInput() CreateFromTransactionInput {
	return CreateFromTransactionInput{
		TransactionID: "txn-77e1-4cc0-9fab",
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
	}
}

func legacyInput() CreateWithInventoryInput {
	return CreateWithInventoryInput{
		WarehouseID:      "WH-002",
		WarehouseName:    "Voinjama Warehouse",
		BuyerID:          "BUY-011",
		BuyerName:        "Lofa Exports",
		FarmerID:         "FRM-580",
		FarmerName:       "Hawa Dukuly",
		CommodityType:    "coffee",
		CommoditySubType: "arabica_coffee",
		PackagingType:    "sisal_bags",
		TotalBags:        40,
		BagWeight:        decimal.NewFromInt(60),
		QualityGrade:     "Premium",
		HarvestDate:      time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		GPSCoordinates:   "8.4219,-9.7478",
		StorageLocation:  "Bay 4",
	}
}

func TestCreateFromTransactionSuccess(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	res := svc.CreateFromTransaction(context.Background(), transactionInput())
	require.True(t, res.Success, "error: %s details: %s", res.Error, res.Details)
	assert.Equal(t, "TXN-20250305-9FAB", res.BatchCode)
	require.NotNil(t, res.Batch)
	assert.Equal(t, enums.BatchStatusGenerated, res.Batch.Status)
	assert.True(t, res.Batch.TotalWeight.Equal(decimal.NewFromInt(500)))
	require.NotNil(t, res.Batch.TransactionID)
	assert.Equal(t, "txn-77e1-4cc0-9fab", *res.Batch.TransactionID)
	assert.NotEmpty(t, res.QRCodeURL)
	assert.False(t, res.QRDegraded)
	require.NotNil(t, res.ProductConfig)
	assert.Equal(t, "Premium Trinitario Cocoa Beans", res.ProductConfig.ProductName)

	stored, err := repo.GetBatchByCode(context.Background(), res.BatchCode)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.QRCodeData)
	assert.Len(t, stored.DigitalSignature, 16)
}

func TestActualQuantityOverridesNominalWeight(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	input := transactionInput()
	actual := decimal.NewFromFloat(487.5)
	input.ActualQuantity = &actual

	res := svc.CreateFromTransaction(context.Background(), input)
	require.True(t, res.Success)
	assert.True(t, res.Batch.TotalWeight.Equal(actual))
}

func TestRejectedPackagingCreatesNoState(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	input := transactionInput()
	input.PackageWeight = decimal.NewFromInt(55) // not a standard jute bag weight

	res := svc.CreateFromTransaction(context.Background(), input)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.Empty(t, repo.batches)
}

func TestUnknownSubCategoryRejected(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	input := transactionInput()
	input.CommoditySubType = "liberica_cocoa"

	res := svc.CreateFromTransaction(context.Background(), input)
	assert.False(t, res.Success)
	assert.Empty(t, repo.batches)
}

func TestDuplicateTransactionReported(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	first := svc.CreateFromTransaction(context.Background(), transactionInput())
	require.True(t, first.Success)

	second := svc.CreateFromTransaction(context.Background(), transactionInput())
	assert.False(t, second.Success)
	assert.NotEmpty(t, second.Error)
}

func TestPersistenceFailureIsStructured(t *testing.T) {
	repo := newStubRepo()
	repo.batchErrs = []error{errors.New("connection reset by peer")}
	svc := newTestService(t, repo)

	res := svc.CreateFromTransaction(context.Background(), transactionInput())
	assert.False(t, res.Success)
	assert.Equal(t, "Failed to create batch", res.Error)
	assert.Contains(t, res.Details, "connection reset")
}

func TestCreateWithInventoryWritesAllThree(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	res := svc.CreateWithInventory(context.Background(), legacyInput())
	require.True(t, res.Success, "error: %s details: %s", res.Error, res.Details)
	assert.Regexp(t, `^WH-BATCH-20250305-[0-9A-Z]{4}$`, res.BatchCode)

	inv := repo.inventory[res.BatchCode]
	require.NotNil(t, inv)
	assert.Equal(t, 40, inv.TotalBags)
	assert.Equal(t, 40, inv.AvailableBags)
	assert.Zero(t, inv.ReservedBags)
	assert.Zero(t, inv.DistributedBags)
	assert.Zero(t, inv.DamagedBags)
	assert.Equal(t, inv.TotalBags, inv.AvailableBags+inv.ReservedBags+inv.DistributedBags+inv.DamagedBags)
	assert.Equal(t, enums.BagInventoryStatusAvailable, inv.Status)
	assert.Equal(t, 80, inv.MaxCapacity)

	movements, err := repo.ListMovementsByBatch(context.Background(), res.BatchCode)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, enums.MovementTypeIn, movements[0].MovementType)
	assert.Equal(t, 40, movements[0].Quantity)
	assert.Equal(t, "Initial batch creation", movements[0].Reason)
}

func TestLegacyFlowRollsBackOnMovementFailure(t *testing.T) {
	repo := newStubRepo()
	repo.moveErr = errors.New("disk full")
	svc := newTestService(t, repo)

	res := svc.CreateWithInventory(context.Background(), legacyInput())
	assert.False(t, res.Success)
	assert.Empty(t, repo.batches, "batch write must roll back with the movement")
	assert.Empty(t, repo.inventory)
}

func TestLegacyCodeCollisionRetries(t *testing.T) {
	repo := newStubRepo()
	repo.batchErrs = []error{
		fmt.Errorf(`duplicate key value violates unique constraint "batches_batch_code_key"`),
	}
	svc := newTestService(t, repo)

	res := svc.CreateWithInventory(context.Background(), legacyInput())
	require.True(t, res.Success, "collision should regenerate and retry: %s", res.Error)
	assert.Len(t, repo.batches, 1)
}

func TestLegacyRetriesExhausted(t *testing.T) {
	repo := newStubRepo()
	collision := fmt.Errorf(`duplicate key value violates unique constraint "batches_batch_code_key"`)
	repo.batchErrs = []error{collision, collision, collision}
	svc := newTestService(t, repo)

	res := svc.CreateWithInventory(context.Background(), legacyInput())
	assert.False(t, res.Success)
	assert.Empty(t, repo.batches)
}

func TestGetBatch(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	created := svc.CreateFromTransaction(context.Background(), transactionInput())
	require.True(t, created.Success)

	batch, err := svc.GetBatch(context.Background(), created.BatchCode)
	require.NoError(t, err)
	assert.Equal(t, created.BatchCode, batch.BatchCode)

	_, err = svc.GetBatch(context.Background(), "")
	assert.Error(t, err)
}

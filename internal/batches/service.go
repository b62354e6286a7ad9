// Package batches holds the batch lifecycle orchestrator: it turns a
// completed transaction (or a legacy bag intake) into a persisted,
// QR-labelled batch in traceable custody.
package batches

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/agritrace/traceability-backend/internal/batchcode"
	"github.com/agritrace/traceability-backend/internal/payload"
	"github.com/agritrace/traceability-backend/internal/qrimage"
	"github.com/agritrace/traceability-backend/internal/registry"
	"github.com/agritrace/traceability-backend/pkg/db"
	"github.com/agritrace/traceability-backend/pkg/db/models"
	"github.com/agritrace/traceability-backend/pkg/enums"
	pkgerrors "github.com/agritrace/traceability-backend/pkg/errors"
	"github.com/agritrace/traceability-backend/pkg/logger"
	"github.com/agritrace/traceability-backend/pkg/metrics"
	"github.com/agritrace/traceability-backend/pkg/types"
)

const (
	flowTransaction = "transaction"
	flowLegacy      = "legacy"

	defaultCheckedBy    = "WH-INS-001"
	defaultReorderLevel = 50
)

// Service exposes the batch creation and lookup operations. Creation methods
// always return a CreationResult; they never surface an error to the caller.
type Service interface {
	CreateFromTransaction(ctx context.Context, input CreateFromTransactionInput) CreationResult
	CreateWithInventory(ctx context.Context, input CreateWithInventoryInput) CreationResult
	GetBatch(ctx context.Context, batchCode string) (*models.Batch, error)
}

// TxRunner executes fn inside a storage transaction. Satisfied by db.Client.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ImageRenderer is the QR rendering seam. Satisfied by qrimage.Renderer.
type ImageRenderer interface {
	Render(ctx context.Context, doc *payload.Document, compact payload.CompactPayload) qrimage.Result
}

type service struct {
	repo     Repository
	registry *registry.Registry
	codes    *batchcode.Generator
	builder  *payload.Builder
	renderer ImageRenderer
	tx       TxRunner
	logg     *logger.Logger
	metrics  *metrics.TraceabilityMetrics
	retries  int
}

// NewService wires the orchestrator. retries bounds legacy code regeneration
// on batch code collisions; values below 1 are clamped to 1.
func NewService(
	repo Repository,
	reg *registry.Registry,
	codes *batchcode.Generator,
	builder *payload.Builder,
	renderer ImageRenderer,
	tx TxRunner,
	logg *logger.Logger,
	m *metrics.TraceabilityMetrics,
	retries int,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("batch repository is required")
	}
	if reg == nil {
		return nil, fmt.Errorf("product registry is required")
	}
	if codes == nil {
		return nil, fmt.Errorf("batch code generator is required")
	}
	if builder == nil {
		return nil, fmt.Errorf("payload builder is required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("qr renderer is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if retries < 1 {
		retries = 1
	}
	return &service{
		repo:     repo,
		registry: reg,
		codes:    codes,
		builder:  builder,
		renderer: renderer,
		tx:       tx,
		logg:     logg,
		metrics:  m,
		retries:  retries,
	}, nil
}

// CreateFromTransaction runs the enhanced creation flow: validate packaging,
// mint the code, build and render the payload, persist the batch. Packaging
// validation failures short-circuit before any state is created.
func (s *service) CreateFromTransaction(ctx context.Context, input CreateFromTransactionInput) CreationResult {
	ctx = s.withCreationFields(ctx, input.WarehouseID)

	if input.TransactionID == "" {
		s.metrics.IncBatchFailure(flowTransaction)
		return failure("Transaction id is required", "")
	}

	validation := s.registry.ValidatePackaging(input.CommodityType, input.CommoditySubType, input.PackagingType, input.PackageWeight)
	if !validation.Valid {
		s.metrics.IncBatchFailure(flowTransaction)
		return failure(validation.Err, "")
	}

	variant, err := s.registry.Variant(input.CommodityType, input.CommoditySubType)
	if err != nil {
		s.metrics.IncBatchFailure(flowTransaction)
		return failureFromError("Failed to resolve product configuration", err)
	}

	batchCode := s.codes.FromTransaction(input.TransactionID)
	ctx = s.withBatchCode(ctx, batchCode)

	doc, err := s.builder.Build(payload.BuildInput{
		Kind:             payload.KindEnhanced,
		BatchCode:        batchCode,
		TransactionID:    input.TransactionID,
		WarehouseID:      input.WarehouseID,
		WarehouseName:    input.WarehouseName,
		BuyerID:          input.BuyerID,
		BuyerName:        input.BuyerName,
		FarmerID:         input.FarmerID,
		FarmerName:       input.FarmerName,
		CommodityType:    input.CommodityType,
		CommoditySubType: input.CommoditySubType,
		PackagingType:    input.PackagingType,
		TotalPackages:    input.TotalPackages,
		PackageWeight:    input.PackageWeight,
		ActualQuantity:   input.ActualQuantity,
		QualityGrade:     input.QualityGrade,
		HarvestDate:      input.HarvestDate,
		ProcessingDate:   input.ProcessingDate,
		GPSCoordinates:   input.GPSCoordinates,
		WarehouseLocation: input.WarehouseLocation,
		FarmPlotData:      input.FarmPlotData,
		InspectionData:    input.InspectionData,
		EUDRCompliance:    input.EUDRCompliance,
		CertificationData: input.CertificationData,
		ComplianceData:    input.ComplianceData,
		Variant:           &variant,
	})
	if err != nil {
		s.metrics.IncBatchFailure(flowTransaction)
		return failureFromError("Failed to build traceability payload", err)
	}

	image := s.renderer.Render(ctx, doc, s.builder.Compact(doc.BatchCode, doc.Signature))

	batch, err := s.assembleBatch(input, doc, image)
	if err != nil {
		s.metrics.IncBatchFailure(flowTransaction)
		return failureFromError("Failed to assemble batch record", err)
	}

	if _, err := s.repo.CreateBatch(ctx, batch); err != nil {
		s.metrics.IncBatchFailure(flowTransaction)
		if s.logg != nil {
			s.logg.Error(ctx, "persisting batch failed", err)
		}
		if db.IsUniqueViolation(err, "batches_transaction_id_key") {
			return failure("A batch already exists for this transaction", input.TransactionID)
		}
		if db.IsUniqueViolation(err, "") {
			return failure("Batch code already in use", batchCode)
		}
		return failureFromError("Failed to create batch", err)
	}

	s.metrics.IncBatchCreated(flowTransaction)
	if s.logg != nil {
		s.logg.Info(ctx, "batch created from transaction")
	}

	return CreationResult{
		Success:       true,
		BatchCode:     batchCode,
		Batch:         batch,
		QRCodeURL:     image.DataURL,
		QRDegraded:    image.Degraded,
		ProductConfig: &variant,
		Message:       fmt.Sprintf("Batch %s created from transaction %s", batchCode, input.TransactionID),
	}
}

// CreateWithInventory runs the legacy bag-oriented flow. The batch, its
// inventory row, and the initial "in" movement are written inside one storage
// transaction; a batch code collision regenerates the code and retries.
func (s *service) CreateWithInventory(ctx context.Context, input CreateWithInventoryInput) CreationResult {
	ctx = s.withCreationFields(ctx, input.WarehouseID)

	validation := s.registry.ValidatePackaging(input.CommodityType, input.CommoditySubType, input.PackagingType, input.BagWeight)
	if !validation.Valid {
		s.metrics.IncBatchFailure(flowLegacy)
		return failure(validation.Err, "")
	}

	variant, err := s.registry.Variant(input.CommodityType, input.CommoditySubType)
	if err != nil {
		s.metrics.IncBatchFailure(flowLegacy)
		return failureFromError("Failed to resolve product configuration", err)
	}

	var lastErr error
	for attempt := 0; attempt < s.retries; attempt++ {
		batchCode := s.codes.Legacy()
		attemptCtx := s.withBatchCode(ctx, batchCode)

		result, err := s.createLegacyOnce(attemptCtx, input, variant, batchCode)
		if err == nil {
			s.metrics.IncBatchCreated(flowLegacy)
			if s.logg != nil {
				s.logg.Info(attemptCtx, "legacy batch created with inventory")
			}
			return result
		}
		lastErr = err

		if db.IsUniqueViolation(err, "batches_batch_code_key") || db.IsUniqueViolation(err, "") {
			if s.logg != nil {
				s.logg.Warn(attemptCtx, "batch code collision, regenerating")
			}
			continue
		}
		break
	}

	s.metrics.IncBatchFailure(flowLegacy)
	if s.logg != nil {
		s.logg.Error(ctx, "legacy batch creation failed", lastErr)
	}
	return failureFromError("Failed to create batch", lastErr)
}

func (s *service) createLegacyOnce(ctx context.Context, input CreateWithInventoryInput, variant registry.ProductVariant, batchCode string) (CreationResult, error) {
	doc, err := s.builder.Build(payload.BuildInput{
		Kind:             payload.KindLegacy,
		BatchCode:        batchCode,
		WarehouseID:      input.WarehouseID,
		WarehouseName:    input.WarehouseName,
		BuyerID:          input.BuyerID,
		BuyerName:        input.BuyerName,
		FarmerID:         input.FarmerID,
		FarmerName:       input.FarmerName,
		CommodityType:    input.CommodityType,
		CommoditySubType: input.CommoditySubType,
		PackagingType:    input.PackagingType,
		TotalPackages:    input.TotalBags,
		PackageWeight:    input.BagWeight,
		QualityGrade:     input.QualityGrade,
		HarvestDate:      input.HarvestDate,
		GPSCoordinates:   input.GPSCoordinates,
		InspectionData:   input.InspectionData,
		EUDRCompliance:   input.EUDRCompliance,
		Variant:          &variant,
	})
	if err != nil {
		return CreationResult{}, err
	}

	image := s.renderer.Render(ctx, doc, s.builder.Compact(doc.BatchCode, doc.Signature))

	qrData, err := json.Marshal(doc.Body)
	if err != nil {
		return CreationResult{}, fmt.Errorf("marshalling qr payload: %w", err)
	}

	batch := &models.Batch{
		BatchCode:        batchCode,
		WarehouseID:      input.WarehouseID,
		WarehouseName:    input.WarehouseName,
		BuyerID:          input.BuyerID,
		BuyerName:        input.BuyerName,
		FarmerID:         input.FarmerID,
		FarmerName:       input.FarmerName,
		CommodityType:    input.CommodityType,
		CommoditySubType: input.CommoditySubType,
		PackagingType:    input.PackagingType,
		TotalPackages:    input.TotalBags,
		PackageWeight:    input.BagWeight,
		TotalWeight:      doc.TotalWeight,
		QualityGrade:     input.QualityGrade,
		HarvestDate:      input.HarvestDate,
		InspectionData:   input.InspectionData,
		EUDRCompliance:   input.EUDRCompliance,
		GPSCoordinates:   input.GPSCoordinates,
		WarehouseLocation: input.StorageLocation,
		QRCodeData:        qrData,
		DigitalSignature:  doc.Signature,
		Status:            enums.BatchStatusGenerated,
	}
	if image.DataURL != "" {
		batch.QRCodeURL = &image.DataURL
	}

	checkedBy := input.CheckedBy
	if checkedBy == "" {
		checkedBy = defaultCheckedBy
	}

	inventory := &models.WarehouseBagInventory{
		WarehouseID:   input.WarehouseID,
		WarehouseName: input.WarehouseName,
		BatchCode:     batchCode,
		BagType:       input.PackagingType,
		BagSize:       fmt.Sprintf("%skg", input.BagWeight),
		TotalBags:     input.TotalBags,
		AvailableBags: input.TotalBags,
		Location:      input.StorageLocation,
		StorageConditions: types.JSONMap{
			"temperature": variant.StorageRequirements.Temperature,
			"humidity":    variant.StorageRequirements.Humidity,
			"ventilation": variant.StorageRequirements.Ventilation,
			"pestControl": variant.StorageRequirements.PestControl,
		},
		CheckedBy:    checkedBy,
		ReorderLevel: defaultReorderLevel,
		MaxCapacity:  input.TotalBags * 2,
		Status:       enums.BagInventoryStatusAvailable,
	}

	movement := &models.BagMovement{
		WarehouseID:  input.WarehouseID,
		BatchCode:    batchCode,
		MovementType: enums.MovementTypeIn,
		Quantity:     input.TotalBags,
		AuthorizedBy: checkedBy,
		Reason:       "Initial batch creation",
		Notes:        fmt.Sprintf("Created new batch with %d bags for buyer %s", input.TotalBags, input.BuyerName),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.CreateBatch(ctx, batch); err != nil {
			return err
		}
		if _, err := txRepo.CreateInventory(ctx, inventory); err != nil {
			return err
		}
		return txRepo.CreateMovement(ctx, movement)
	})
	if err != nil {
		return CreationResult{}, err
	}

	return CreationResult{
		Success:       true,
		BatchCode:     batchCode,
		Batch:         batch,
		Inventory:     inventory,
		QRCodeURL:     image.DataURL,
		QRDegraded:    image.Degraded,
		ProductConfig: &variant,
		Message:       fmt.Sprintf("Batch %s created successfully with %d bags", batchCode, input.TotalBags),
	}, nil
}

// GetBatch loads a persisted batch by code.
func (s *service) GetBatch(ctx context.Context, batchCode string) (*models.Batch, error) {
	if batchCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "batch code is required")
	}
	return s.repo.GetBatchByCode(ctx, batchCode)
}

func (s *service) assembleBatch(input CreateFromTransactionInput, doc *payload.Document, image qrimage.Result) (*models.Batch, error) {
	qrData, err := json.Marshal(doc.Body)
	if err != nil {
		return nil, fmt.Errorf("marshalling qr payload: %w", err)
	}

	transactionID := input.TransactionID
	batch := &models.Batch{
		BatchCode:     doc.BatchCode,
		TransactionID: &transactionID,

		WarehouseID:   input.WarehouseID,
		WarehouseName: input.WarehouseName,
		BuyerID:       input.BuyerID,
		BuyerName:     input.BuyerName,
		FarmerID:      input.FarmerID,
		FarmerName:    input.FarmerName,

		CommodityType:    input.CommodityType,
		CommoditySubType: input.CommoditySubType,
		PackagingType:    input.PackagingType,
		TotalPackages:    input.TotalPackages,
		PackageWeight:    input.PackageWeight,
		TotalWeight:      doc.TotalWeight,
		QualityGrade:     input.QualityGrade,
		HarvestDate:      input.HarvestDate,
		ProcessingDate:   input.ProcessingDate,
		ExpiryDate:       doc.ExpiryDate,

		InspectionData:    input.InspectionData,
		EUDRCompliance:    input.EUDRCompliance,
		CertificationData: input.CertificationData,
		ComplianceData:    input.ComplianceData,

		GPSCoordinates:    input.GPSCoordinates,
		WarehouseLocation: input.WarehouseLocation,
		FarmPlotData:      input.FarmPlotData,

		QRCodeData:       qrData,
		DigitalSignature: doc.Signature,
		Status:           enums.BatchStatusGenerated,
	}
	if image.DataURL != "" {
		batch.QRCodeURL = &image.DataURL
	}
	return batch, nil
}

func (s *service) withCreationFields(ctx context.Context, warehouseID string) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithWarehouseID(ctx, warehouseID)
}

func (s *service) withBatchCode(ctx context.Context, batchCode string) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithBatchCode(ctx, batchCode)
}

func failureFromError(message string, err error) CreationResult {
	details := ""
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return failure(typed.Message(), "")
		}
		details = err.Error()
	}
	return failure(message, details)
}

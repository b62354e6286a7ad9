package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/agritrace/traceability-backend/api/responses"
	"github.com/agritrace/traceability-backend/api/validators"
	"github.com/agritrace/traceability-backend/internal/batches"
	pkgerrors "github.com/agritrace/traceability-backend/pkg/errors"
	"github.com/agritrace/traceability-backend/pkg/logger"
	"github.com/agritrace/traceability-backend/pkg/types"
)

type createBatchRequest struct {
	TransactionID string `json:"transactionId" validate:"required"`

	WarehouseID   string `json:"warehouseId" validate:"required"`
	WarehouseName string `json:"warehouseName"`
	BuyerID       string `json:"buyerId"`
	BuyerName     string `json:"buyerName"`
	FarmerID      string `json:"farmerId"`
	FarmerName    string `json:"farmerName"`

	CommodityType    string           `json:"commodityType" validate:"required"`
	CommoditySubType string           `json:"commoditySubType" validate:"required"`
	PackagingType    string           `json:"packagingType" validate:"required"`
	TotalPackages    int              `json:"totalPackages" validate:"required,min=1"`
	PackageWeight    decimal.Decimal  `json:"packageWeight" validate:"required"`
	ActualQuantity   *decimal.Decimal `json:"actualQuantity,omitempty"`
	QualityGrade     string           `json:"qualityGrade"`
	HarvestDate      time.Time        `json:"harvestDate" validate:"required"`
	ProcessingDate   *time.Time       `json:"processingDate,omitempty"`

	GPSCoordinates    string        `json:"gpsCoordinates"`
	WarehouseLocation string        `json:"warehouseLocation"`
	FarmPlotData      types.JSONMap `json:"farmPlotData,omitempty"`

	InspectionData    types.JSONMap `json:"inspectionData,omitempty"`
	EUDRCompliance    types.JSONMap `json:"eudrCompliance,omitempty"`
	CertificationData types.JSONMap `json:"certificationData,omitempty"`
	ComplianceData    types.JSONMap `json:"complianceData,omitempty"`
}

func (req createBatchRequest) toInput() batches.CreateFromTransactionInput {
	return batches.CreateFromTransactionInput{
		TransactionID:     req.TransactionID,
		WarehouseID:       req.WarehouseID,
		WarehouseName:     req.WarehouseName,
		BuyerID:           req.BuyerID,
		BuyerName:         req.BuyerName,
		FarmerID:          req.FarmerID,
		FarmerName:        req.FarmerName,
		CommodityType:     req.CommodityType,
		CommoditySubType:  req.CommoditySubType,
		PackagingType:     req.PackagingType,
		TotalPackages:     req.TotalPackages,
		PackageWeight:     req.PackageWeight,
		ActualQuantity:    req.ActualQuantity,
		QualityGrade:      req.QualityGrade,
		HarvestDate:       req.HarvestDate,
		ProcessingDate:    req.ProcessingDate,
		GPSCoordinates:    req.GPSCoordinates,
		WarehouseLocation: req.WarehouseLocation,
		FarmPlotData:      req.FarmPlotData,
		InspectionData:    req.InspectionData,
		EUDRCompliance:    req.EUDRCompliance,
		CertificationData: req.CertificationData,
		ComplianceData:    req.ComplianceData,
	}
}

// CreateBatch handles transaction-driven batch creation. The orchestrator
// result is written as-is: creation failures are part of the contract, not
// HTTP errors.
func CreateBatch(svc batches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "batch service unavailable"))
			return
		}

		var payload createBatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result := svc.CreateFromTransaction(r.Context(), payload.toInput())
		responses.WriteResult(w, result)
	}
}

type createLegacyBatchRequest struct {
	WarehouseID   string `json:"warehouseId" validate:"required"`
	WarehouseName string `json:"warehouseName"`
	BuyerID       string `json:"buyerId"`
	BuyerName     string `json:"buyerName"`
	FarmerID      string `json:"farmerId"`
	FarmerName    string `json:"farmerName"`

	CommodityType    string          `json:"commodityType" validate:"required"`
	CommoditySubType string          `json:"commoditySubType" validate:"required"`
	PackagingType    string          `json:"packagingType" validate:"required"`
	TotalBags        int             `json:"totalBags" validate:"required,min=1"`
	BagWeight        decimal.Decimal `json:"bagWeight" validate:"required"`
	QualityGrade     string          `json:"qualityGrade"`
	HarvestDate      time.Time       `json:"harvestDate" validate:"required"`

	InspectionData types.JSONMap `json:"inspectionData,omitempty"`
	EUDRCompliance types.JSONMap `json:"eudrCompliance,omitempty"`

	GPSCoordinates  string `json:"gpsCoordinates"`
	StorageLocation string `json:"storageLocation"`
	CheckedBy       string `json:"checkedBy"`
}

func (req createLegacyBatchRequest) toInput() batches.CreateWithInventoryInput {
	return batches.CreateWithInventoryInput{
		WarehouseID:      req.WarehouseID,
		WarehouseName:    req.WarehouseName,
		BuyerID:          req.BuyerID,
		BuyerName:        req.BuyerName,
		FarmerID:         req.FarmerID,
		FarmerName:       req.FarmerName,
		CommodityType:    req.CommodityType,
		CommoditySubType: req.CommoditySubType,
		PackagingType:    req.PackagingType,
		TotalBags:        req.TotalBags,
		BagWeight:        req.BagWeight,
		QualityGrade:     req.QualityGrade,
		HarvestDate:      req.HarvestDate,
		InspectionData:   req.InspectionData,
		EUDRCompliance:   req.EUDRCompliance,
		GPSCoordinates:   req.GPSCoordinates,
		StorageLocation:  req.StorageLocation,
		CheckedBy:        req.CheckedBy,
	}
}

// CreateLegacyBatch handles the bag-oriented creation flow with inventory.
func CreateLegacyBatch(svc batches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "batch service unavailable"))
			return
		}

		var payload createLegacyBatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result := svc.CreateWithInventory(r.Context(), payload.toInput())
		responses.WriteResult(w, result)
	}
}

// GetBatch fetches a persisted batch by code.
func GetBatch(svc batches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "batch service unavailable"))
			return
		}

		batch, err := svc.GetBatch(r.Context(), chi.URLParam(r, "batchCode"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, batch)
	}
}

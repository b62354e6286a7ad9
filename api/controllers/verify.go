package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agritrace/traceability-backend/api/responses"
	"github.com/agritrace/traceability-backend/api/validators"
	"github.com/agritrace/traceability-backend/internal/verification"
	"github.com/agritrace/traceability-backend/pkg/enums"
	pkgerrors "github.com/agritrace/traceability-backend/pkg/errors"
	"github.com/agritrace/traceability-backend/pkg/logger"
)

type verifyRequest struct {
	ScannedBy       string `json:"scannedBy"`
	ScannerType     string `json:"scannerType" validate:"required,oneof=buyer inspector exporter customs"`
	ScanLocation    string `json:"scanLocation"`
	ScanCoordinates string `json:"scanCoordinates"`
	DeviceInfo      string `json:"deviceInfo"`
}

// VerifyBatch records a scan and returns the batch with its custody history.
// The service result is written as-is; unknown codes are structured failures.
func VerifyBatch(svc verification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verification service unavailable"))
			return
		}

		var payload verifyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scannerType, err := enums.ParseScannerType(payload.ScannerType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid scanner type"))
			return
		}

		result := svc.Verify(r.Context(), chi.URLParam(r, "batchCode"), verification.ScannerInfo{
			ScannedBy:       payload.ScannedBy,
			ScannerType:     scannerType,
			ScanLocation:    payload.ScanLocation,
			ScanCoordinates: payload.ScanCoordinates,
			DeviceInfo:      payload.DeviceInfo,
		})
		responses.WriteResult(w, result)
	}
}

// PublicVerify serves the QR verification URL convention. Scans from the
// public link carry no scanner identity, so they are recorded as buyer scans.
func PublicVerify(svc verification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verification service unavailable"))
			return
		}

		result := svc.Verify(r.Context(), chi.URLParam(r, "batchCode"), verification.ScannerInfo{
			ScannerType:  enums.ScannerTypeBuyer,
			ScanLocation: "public-link",
			DeviceInfo:   r.UserAgent(),
		})
		responses.WriteResult(w, result)
	}
}

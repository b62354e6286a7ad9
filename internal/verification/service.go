// Package verification resolves scanned batch codes back to their custody
// record. Verification is read-plus-audit-log: every lookup appends a scan
// event and never mutates the batch itself.
package verification

import (
	"context"
	"fmt"
	"time"

	"github.com/agritrace/traceability-backend/internal/batches"
	"github.com/agritrace/traceability-backend/pkg/db/models"
	"github.com/agritrace/traceability-backend/pkg/enums"
	pkgerrors "github.com/agritrace/traceability-backend/pkg/errors"
	"github.com/agritrace/traceability-backend/pkg/logger"
	"github.com/agritrace/traceability-backend/pkg/metrics"
)

// ScannerInfo identifies who is verifying a batch and from where.
type ScannerInfo struct {
	ScannedBy       string
	ScannerType     enums.ScannerType
	ScanLocation    string
	ScanCoordinates string
	DeviceInfo      string
}

// Summary is the verification verdict attached to a successful lookup.
type Summary struct {
	Verified   bool      `json:"verified"`
	VerifiedAt time.Time `json:"verifiedAt"`
	ScanCount  int       `json:"scanCount"`
}

// Data aggregates the batch with its accumulated custody history.
type Data struct {
	Batch        *models.Batch                 `json:"batch"`
	Inventory    *models.WarehouseBagInventory `json:"inventory,omitempty"`
	Movements    []models.BagMovement          `json:"movements"`
	Scans        []models.QrScan               `json:"scans"`
	Verification Summary                       `json:"verification"`
}

// Result is the always-returned outcome of a verification. Unknown codes are
// an expected, frequent case (typos, forged labels) and come back as
// structured failures.
type Result struct {
	Success bool   `json:"success"`
	Data    *Data  `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

// Service verifies scanned batch codes.
type Service interface {
	Verify(ctx context.Context, batchCode string, scanner ScannerInfo) Result
}

type service struct {
	repo    batches.Repository
	logg    *logger.Logger
	metrics *metrics.TraceabilityMetrics
	now     func() time.Time
}

// Option configures the service.
type Option func(*service)

// WithClock overrides the verification timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the verification service.
func NewService(repo batches.Repository, logg *logger.Logger, m *metrics.TraceabilityMetrics, opts ...Option) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("batch repository is required")
	}
	s := &service{repo: repo, logg: logg, metrics: m, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Verify looks up the batch, records the scan, and returns the batch plus its
// inventory, movement, and scan history.
func (s *service) Verify(ctx context.Context, batchCode string, scanner ScannerInfo) Result {
	if s.logg != nil {
		ctx = s.logg.WithBatchCode(ctx, batchCode)
		ctx = s.logg.WithScannerType(ctx, scanner.ScannerType.String())
	}

	if batchCode == "" {
		return Result{Success: false, Error: "Batch code is required"}
	}
	if !scanner.ScannerType.IsValid() {
		return Result{Success: false, Error: fmt.Sprintf("Unknown scanner type %q", scanner.ScannerType)}
	}

	batch, err := s.repo.GetBatchByCode(ctx, batchCode)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			if s.logg != nil {
				s.logg.Warn(ctx, "verification attempted for unknown batch code")
			}
			return Result{Success: false, Error: "Invalid QR code - batch not found"}
		}
		if s.logg != nil {
			s.logg.Error(ctx, "batch lookup failed", err)
		}
		return Result{Success: false, Error: "Failed to verify QR code", Details: err.Error()}
	}

	scan := &models.QrScan{
		BatchCode:       batchCode,
		ScannedBy:       scanner.ScannedBy,
		ScannerType:     scanner.ScannerType,
		ScanLocation:    scanner.ScanLocation,
		ScanCoordinates: scanner.ScanCoordinates,
		DeviceInfo:      scanner.DeviceInfo,
	}
	if _, err := s.repo.CreateScan(ctx, scan); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "recording scan failed", err)
		}
		return Result{Success: false, Error: "Failed to verify QR code", Details: err.Error()}
	}
	s.metrics.IncScanRecorded(scanner.ScannerType.String())

	inventory, err := s.repo.GetInventoryByBatch(ctx, batchCode)
	if err != nil {
		return Result{Success: false, Error: "Failed to verify QR code", Details: err.Error()}
	}
	movements, err := s.repo.ListMovementsByBatch(ctx, batchCode)
	if err != nil {
		return Result{Success: false, Error: "Failed to verify QR code", Details: err.Error()}
	}
	scans, err := s.repo.ListScansByBatch(ctx, batchCode)
	if err != nil {
		return Result{Success: false, Error: "Failed to verify QR code", Details: err.Error()}
	}

	if s.logg != nil {
		s.logg.Info(ctx, "batch verified")
	}

	return Result{
		Success: true,
		Data: &Data{
			Batch:     batch,
			Inventory: inventory,
			Movements: movements,
			Scans:     scans,
			Verification: Summary{
				Verified:   true,
				VerifiedAt: s.now().UTC(),
				ScanCount:  len(scans),
			},
		},
	}
}

package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agritrace/traceability-backend/internal/batchcode"
	"github.com/agritrace/traceability-backend/internal/batches"
	"github.com/agritrace/traceability-backend/internal/payload"
	"github.com/agritrace/traceability-backend/internal/qrimage"
	"github.com/agritrace/traceability-backend/internal/registry"
	"github.com/agritrace/traceability-backend/internal/signer"
	"github.com/agritrace/traceability-backend/internal/verification"
	"github.com/agritrace/traceability-backend/pkg/config"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.ScanRateLimit.Window = time.Minute
	cfg.ScanRateLimit.IPLimit = 1000
	cfg.ScanRateLimit.PerBatch = 1000

	reg := registry.New()
	repo := batches.NewMemoryRepository()
	builder := payload.NewBuilder(signer.NewStub(), "https://trace.agritrace.example.org")
	batchSvc, err := batches.NewService(repo, reg, batchcode.NewGenerator(), builder,
		qrimage.NewRenderer(300, nil, nil), batches.NopTxRunner{}, nil, nil, 3)
	require.NoError(t, err)
	verifySvc, err := verification.NewService(repo, nil, nil)
	require.NoError(t, err)

	return NewRouter(cfg, nil, okPinger{}, nil, reg, batchSvc, verifySvc, nil)
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	handler := testRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestProductEndpoints(t *testing.T) {
	handler := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/cocoa/premium_cocoa", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/wheat", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidatePackagingEndpoint(t *testing.T) {
	handler := testRouter(t)

	rec := postJSON(t, handler, "/api/v1/products/validate-packaging", map[string]any{
		"category":      "cocoa",
		"subCategory":   "premium_cocoa",
		"packagingType": "jute_bags",
		"weight":        50,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			Valid bool `json:"valid"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Valid)

	rec = postJSON(t, handler, "/api/v1/products/validate-packaging", map[string]any{
		"category":      "cocoa",
		"subCategory":   "premium_cocoa",
		"packagingType": "jute_bags",
		"weight":        55,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.Valid)
}

func legacyBody() map[string]any {
	return map[string]any{
		"warehouseId":      "WH-002",
		"warehouseName":    "Voinjama Warehouse",
		"buyerName":        "Lofa Exports",
		"commodityType":    "coffee",
		"commoditySubType": "arabica_coffee",
		"packagingType":    "sisal_bags",
		"totalBags":        40,
		"bagWeight":        60,
		"qualityGrade":     "Premium",
		"harvestDate":      "2025-01-15T00:00:00Z",
	}
}

func TestCreateAndVerifyRoundTrip(t *testing.T) {
	handler := testRouter(t)

	rec := postJSON(t, handler, "/api/v1/batches/legacy", legacyBody())
	require.Equal(t, http.StatusOK, rec.Code)

	var creation struct {
		Success   bool   `json:"success"`
		BatchCode string `json:"batchCode"`
		Error     string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &creation))
	require.True(t, creation.Success, "error: %s", creation.Error)
	require.NotEmpty(t, creation.BatchCode)

	// fetch
	req := httptest.NewRequest(http.MethodGet, "/api/v1/batches/"+creation.BatchCode, nil)
	getRec := httptest.NewRecorder()
	handler.ServeHTTP(getRec, req)
	assert.Equal(t, http.StatusOK, getRec.Code)

	// authenticated verify
	verifyRec := postJSON(t, handler, "/api/v1/verify/"+creation.BatchCode, map[string]any{
		"scannedBy":   "INS-104",
		"scannerType": "inspector",
	})
	require.Equal(t, http.StatusOK, verifyRec.Code)

	var verify struct {
		Success bool `json:"success"`
		Data    struct {
			Verification struct {
				ScanCount int `json:"scanCount"`
			} `json:"verification"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(verifyRec.Body.Bytes(), &verify))
	assert.True(t, verify.Success)
	assert.Equal(t, 1, verify.Data.Verification.ScanCount)

	// public link verify
	req = httptest.NewRequest(http.MethodGet, "/verify/"+creation.BatchCode, nil)
	pubRec := httptest.NewRecorder()
	handler.ServeHTTP(pubRec, req)
	require.Equal(t, http.StatusOK, pubRec.Code)
	require.NoError(t, json.Unmarshal(pubRec.Body.Bytes(), &verify))
	assert.True(t, verify.Success)
	assert.Equal(t, 2, verify.Data.Verification.ScanCount)
}

func TestVerifyUnknownBatchReturnsStructuredFailure(t *testing.T) {
	handler := testRouter(t)

	rec := postJSON(t, handler, "/api/v1/verify/WH-BATCH-20250305-XXXX", map[string]any{
		"scannerType": "customs",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Equal(t, "Invalid QR code - batch not found", result.Error)
}

func TestCreateBatchRejectsInvalidBody(t *testing.T) {
	handler := testRouter(t)

	rec := postJSON(t, handler, "/api/v1/batches", map[string]any{
		"warehouseId": "WH-001",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownBatchLookupIs404(t *testing.T) {
	handler := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/batches/WH-BATCH-20250305-XXXX", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

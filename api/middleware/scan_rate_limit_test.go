package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/agritrace/traceability-backend/pkg/errors"
)

type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: map[string]int64{}}
}

func (s *fakeRateStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[key]++
	return s.counts[key], nil
}

func verifyRouter(mw func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.With(mw).Post("/verify/{batchCode}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestScanRateLimitAllowsUnderLimit(t *testing.T) {
	store := newFakeRateStore()
	policy := NewScanRateLimitPolicy("verify", time.Minute, 3, 0)
	handler := verifyRouter(ScanRateLimit(policy, store, nil))

	req := httptest.NewRequest(http.MethodPost, "/verify/WH-BATCH-20250305-AB12", nil)
	req.RemoteAddr = "1.2.3.4:5678"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestScanRateLimitIPLimitTriggers(t *testing.T) {
	store := newFakeRateStore()
	policy := NewScanRateLimitPolicy("verify", time.Minute, 2, 0)
	handler := verifyRouter(ScanRateLimit(policy, store, nil))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/verify/WH-BATCH-20250305-AB12", nil)
		req.RemoteAddr = "1.2.3.4:5678"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i < 2 && rec.Code != http.StatusOK {
			t.Fatalf("expected success before limit, got %d", rec.Code)
		}
		if i >= 2 {
			if rec.Code != http.StatusTooManyRequests {
				t.Fatalf("expected 429, got %d", rec.Code)
			}
			var payload struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if payload.Error.Code != string(pkgerrors.CodeRateLimit) {
				t.Fatalf("unexpected code: %s", payload.Error.Code)
			}
		}
	}
}

func TestScanRateLimitBatchLimitTriggers(t *testing.T) {
	store := newFakeRateStore()
	policy := NewScanRateLimitPolicy("verify", time.Minute, 0, 1)
	handler := verifyRouter(ScanRateLimit(policy, store, nil))

	// different IPs, same batch code
	for i, addr := range []string{"1.1.1.1:1", "2.2.2.2:2"} {
		req := httptest.NewRequest(http.MethodPost, "/verify/TXN-20250305-9FAB", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i == 0 && rec.Code != http.StatusOK {
			t.Fatalf("first scan should pass, got %d", rec.Code)
		}
		if i == 1 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("second scan should be limited, got %d", rec.Code)
		}
	}
}

func TestScanRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	policy := NewScanRateLimitPolicy("verify", 0, 0, 0)
	handler := verifyRouter(ScanRateLimit(policy, newFakeRateStore(), nil))

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/verify/TXN-20250305-9FAB", nil)
		req.RemoteAddr = "1.2.3.4:5678"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("disabled policy must not limit, got %d", rec.Code)
		}
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "9.9.9.9:1234"
	req.Header.Set("X-Forwarded-For", "3.3.3.3, 4.4.4.4")
	if got := clientIP(req); got != "3.3.3.3" {
		t.Fatalf("expected first forwarded ip, got %s", got)
	}
}

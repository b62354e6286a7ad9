package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agritrace/traceability-backend/api/responses"
	pkgerrors "github.com/agritrace/traceability-backend/pkg/errors"
	"github.com/agritrace/traceability-backend/pkg/logger"
)

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// ScanRateLimitPolicy throttles public verification traffic. Forged-code
// probing is the expected abuse: attackers enumerate batch codes against the
// open /verify surface.
type ScanRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	batchLimit int
}

// NewScanRateLimitPolicy builds a policy with the supplied window and limits.
func NewScanRateLimitPolicy(name string, window time.Duration, ipLimit, batchLimit int) ScanRateLimitPolicy {
	return ScanRateLimitPolicy{
		name:       strings.ToLower(strings.TrimSpace(name)),
		window:     window,
		ipLimit:    ipLimit,
		batchLimit: batchLimit,
	}
}

func (p ScanRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.batchLimit > 0)
}

func (p ScanRateLimitPolicy) normalizedName() string {
	if p.name == "" {
		return "scan"
	}
	return p.name
}

func (p ScanRateLimitPolicy) ipKey(ip string) string {
	if ip == "" {
		return ""
	}
	return fmt.Sprintf("rl:ip:%s:%s", p.normalizedName(), ip)
}

func (p ScanRateLimitPolicy) batchKey(batchCode string) string {
	if batchCode == "" {
		return ""
	}
	return fmt.Sprintf("rl:batch:%s:%s", p.normalizedName(), batchCode)
}

// ScanRateLimit enforces per-IP and per-batch-code counters on verification
// endpoints. The batch code comes from the chi route parameter.
func ScanRateLimit(policy ScanRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ip := clientIP(r)
			if policy.ipLimit > 0 {
				if key := policy.ipKey(ip); key != "" {
					if allowed, count, err := allow(ctx, store, key, policy.window, int64(policy.ipLimit)); err != nil {
						responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					} else if !allowed {
						respondRateLimited(ctx, logg, w, policy, "ip", ip, "", count, policy.ipLimit)
						return
					}
				}
			}

			if policy.batchLimit > 0 {
				batchCode := chi.URLParam(r, "batchCode")
				if key := policy.batchKey(batchCode); key != "" {
					if allowed, count, err := allow(ctx, store, key, policy.window, int64(policy.batchLimit)); err != nil {
						responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					} else if !allowed {
						respondRateLimited(ctx, logg, w, policy, "batch", "", batchCode, count, policy.batchLimit)
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func allow(ctx context.Context, store rateLimiterStore, key string, window time.Duration, limit int64) (bool, int64, error) {
	count, err := store.IncrWithTTL(ctx, key, window)
	if err != nil {
		return false, 0, err
	}
	return count <= limit, count, nil
}

func respondRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy ScanRateLimitPolicy, scope, ip, batchCode string, count int64, limit int) {
	if logg != nil {
		fields := map[string]any{
			"scope":          scope,
			"policy":         policy.normalizedName(),
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(policy.window.Seconds()),
		}
		if ip != "" {
			fields["ip"] = ip
		}
		if batchCode != "" {
			fields["batch_code"] = batchCode
		}
		logCtx := logg.WithFields(ctx, fields)
		logg.Warn(logCtx, "scan.rate_limit.blocked")
	}
	err := pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded")
	responses.WriteError(ctx, nil, w, err)
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

package batchcode

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const (
	transactionPrefix = "TXN"
	legacyPrefix      = "WH-BATCH"
	dateLayout        = "20060102"
	suffixAlphabet    = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	suffixLength      = 4
)

// Generator mints batch codes for both creation flows. The clock and random
// source are injectable so code shapes can be pinned in tests.
type Generator struct {
	now  func() time.Time
	rand *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithRand overrides the random source used for legacy code suffixes.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		if r != nil {
			g.rand = r
		}
	}
}

// NewGenerator returns a Generator backed by the wall clock and a
// time-seeded random source.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		now:  time.Now,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FromTransaction derives a deterministic code from the platform transaction
// id: TXN-{YYYYMMDD}-{last 4 of the transaction id, uppercased}. The same
// transaction always maps to the same code within a day, which pairs with the
// unique transaction_id column to make transaction-driven creation idempotent.
func (g *Generator) FromTransaction(transactionID string) string {
	tail := transactionID
	if len(tail) > suffixLength {
		tail = tail[len(tail)-suffixLength:]
	}
	return fmt.Sprintf("%s-%s-%s", transactionPrefix, g.now().UTC().Format(dateLayout), strings.ToUpper(tail))
}

// Legacy mints a random warehouse-scoped code:
// WH-BATCH-{YYYYMMDD}-{4 random base36 chars, uppercased}. Uniqueness is not
// guaranteed here; callers handle collisions against the batch_code unique
// index by regenerating.
func (g *Generator) Legacy() string {
	suffix := make([]byte, suffixLength)
	for i := range suffix {
		suffix[i] = suffixAlphabet[g.rand.Intn(len(suffixAlphabet))]
	}
	return fmt.Sprintf("%s-%s-%s", legacyPrefix, g.now().UTC().Format(dateLayout), suffix)
}

// IsTransactionCode reports whether the code came from the transaction flow.
func IsTransactionCode(code string) bool {
	return strings.HasPrefix(code, transactionPrefix+"-")
}

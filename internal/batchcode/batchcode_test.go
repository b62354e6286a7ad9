package batchcode

import (
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t *testing.T, value string) func() time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return func() time.Time { return ts }
}

func TestFromTransactionShape(t *testing.T) {
	g := NewGenerator(WithClock(fixedClock(t, "2025-03-05T10:00:00Z")))
	assert.Equal(t, "TXN-20250305-1234", g.FromTransaction("abcdef1234"))
}

func TestFromTransactionUppercasesTail(t *testing.T) {
	g := NewGenerator(WithClock(fixedClock(t, "2025-03-05T10:00:00Z")))
	assert.Equal(t, "TXN-20250305-9FAB", g.FromTransaction("77e1-4cc0-9fab"))
}

func TestFromTransactionShortID(t *testing.T) {
	g := NewGenerator(WithClock(fixedClock(t, "2025-03-05T10:00:00Z")))
	assert.Equal(t, "TXN-20250305-AB", g.FromTransaction("ab"))
}

func TestFromTransactionIsDeterministic(t *testing.T) {
	g := NewGenerator(WithClock(fixedClock(t, "2025-03-05T10:00:00Z")))
	first := g.FromTransaction("txn-0099")
	second := g.FromTransaction("txn-0099")
	assert.Equal(t, first, second)
}

func TestLegacyShape(t *testing.T) {
	g := NewGenerator(
		WithClock(fixedClock(t, "2025-03-05T10:00:00Z")),
		WithRand(rand.New(rand.NewSource(1))),
	)
	code := g.Legacy()
	assert.Regexp(t, regexp.MustCompile(`^WH-BATCH-20250305-[0-9A-Z]{4}$`), code)
}

func TestLegacyVariesWithRandomSource(t *testing.T) {
	g := NewGenerator(
		WithClock(fixedClock(t, "2025-03-05T10:00:00Z")),
		WithRand(rand.New(rand.NewSource(42))),
	)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		seen[g.Legacy()] = true
	}
	assert.Greater(t, len(seen), 40, "expected suffixes to vary")
}

func TestIsTransactionCode(t *testing.T) {
	assert.True(t, IsTransactionCode("TXN-20250305-1234"))
	assert.False(t, IsTransactionCode("WH-BATCH-20250305-ABCD"))
	assert.False(t, IsTransactionCode(""))
}

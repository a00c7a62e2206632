package bloom

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSHashMatchesReferenceVector(t *testing.T) {
	// Hand-computed reference: a=63689, seed=5, over "ab".
	// hash0 = 0*63689 + 'a' = 97
	// a1 = 63689*5 = 318445
	// hash1 = 97*318445 + 'b' = 30889165 + 98 = 30889263
	const want = uint64(30889263) & 0x7FFFFFFF
	require.Equal(t, want, rsHash("ab", 5))
}

func TestDerivedK(t *testing.T) {
	// m/n = 1_600_000/110_000 = 14 (integer division), 14*ln(2) = 9.70...
	f := New(1_600_000, 110_000)
	assert.Equal(t, 9, f.K())
}

func TestKClampedToSeedTable(t *testing.T) {
	f := New(1_000_000, 1)
	assert.LessOrEqual(t, f.K(), len(seeds))
}

func TestFirstTestAccepts(t *testing.T) {
	f := New(1024, 8)
	assert.True(t, f.Test("http://example.com/a"))
}

func TestSecondIdenticalTestRejects(t *testing.T) {
	f := New(1024, 8)
	require.True(t, f.Test("http://example.com/a"))
	assert.False(t, f.Test("http://example.com/a"))
}

func TestDistinctURLsAreIndependentlyAccepted(t *testing.T) {
	f := New(4096, 8)
	assert.True(t, f.Test("http://example.com/a"))
	assert.True(t, f.Test("http://example.com/b"))
}

func TestMonotoneAcrossManyInserts(t *testing.T) {
	f := New(1_600_000, 110_000)
	for i := 0; i < 5000; i++ {
		u := fmt.Sprintf("http://example.com/page/%d", i)
		assert.True(t, f.Test(u))
		// Re-testing immediately must now be rejected.
		assert.False(t, f.Test(u))
	}
}

package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeed(label string) []byte {
	sum := sha256.Sum256([]byte(label))
	return sum[:]
}

func TestDeriveDrawValue_Deterministic(t *testing.T) {
	t.Parallel()

	seed := testSeed("fixed")
	first, err := DeriveDrawValue(seed, 4_000_000)
	require.NoError(t, err)
	second, err := DeriveDrawValue(seed, 4_000_000)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.GreaterOrEqual(t, first, int64(0))
	assert.Less(t, first, int64(4_000_000))
}

func TestDeriveDrawValue_InRangeForManySeeds(t *testing.T) {
	t.Parallel()

	totals := []int64{1, 2, 3, 7, 1_000_000, 4_000_000, 1<<62 + 1}
	for _, total := range totals {
		for i := 0; i < 500; i++ {
			v, err := DeriveDrawValue(testSeed(string(rune(i))+"seed"), total)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, v, int64(0))
			assert.Less(t, v, total)
		}
	}
}

func TestDeriveDrawValue_RoughlyUniform(t *testing.T) {
	t.Parallel()

	const buckets = 4
	const samples = 8000
	counts := make([]int, buckets)
	for i := 0; i < samples; i++ {
		seed := testSeed("uniform-" + decimal.NewFromInt(int64(i)).String())
		v, err := DeriveDrawValue(seed, buckets)
		require.NoError(t, err)
		counts[v]++
	}
	for b, c := range counts {
		// Expected 2000 per bucket; 10% tolerance is far outside sampling noise
		assert.InDelta(t, samples/buckets, c, samples/buckets/10, "bucket %d", b)
	}
}

func TestDeriveDrawValue_RejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := DeriveDrawValue([]byte("short"), 10)
	assert.ErrorIs(t, err, ErrDrawFailed)

	_, err = DeriveDrawValue(testSeed("x"), 0)
	assert.ErrorIs(t, err, ErrDrawFailed)
}

func TestWinThreshold(t *testing.T) {
	t.Parallel()

	threshold, err := WinThreshold(decimal.RequireFromString("0.495"))
	require.NoError(t, err)
	assert.Equal(t, int64(495_000), threshold)

	threshold, err = WinThreshold(decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.Equal(t, ProbabilityScale, threshold)

	_, err = WinThreshold(decimal.Zero)
	assert.Error(t, err)
	_, err = WinThreshold(decimal.RequireFromString("1.01"))
	assert.Error(t, err)
}

func TestVerify_TableDraw(t *testing.T) {
	t.Parallel()

	table, err := NewRewardTable("ab", []RewardEntry{
		nothingEntry("A", WholeWeight(1)),
		nothingEntry("B", WholeWeight(3)),
	})
	require.NoError(t, err)
	table.Version = 2

	seed := testSeed("verify")
	value, err := DeriveDrawValue(seed, int64(table.TotalWeight))
	require.NoError(t, err)
	entry, index, err := table.Resolve(Weight(value))
	require.NoError(t, err)

	record := &DrawRecord{
		ID:                1,
		TableKey:          "ab",
		TableVersion:      2,
		Kind:              DrawKindTable,
		Seed:              hex.EncodeToString(seed),
		TotalWeight:       int64(table.TotalWeight),
		RawDrawValue:      value,
		ResolvedIndex:     index,
		ResolvedOutcomeID: entry.OutcomeID,
	}
	assert.NoError(t, Verify(record, table))

	tampered := *record
	tampered.RawDrawValue = (value + 1) % int64(table.TotalWeight)
	assert.Error(t, Verify(&tampered, table))

	wrongVersion := *record
	wrongVersion.TableVersion = 1
	assert.Error(t, Verify(&wrongVersion, table))
}

func TestVerify_ChanceDraw(t *testing.T) {
	t.Parallel()

	seed := testSeed("chance")
	value, err := DeriveDrawValue(seed, ProbabilityScale)
	require.NoError(t, err)

	record := &DrawRecord{
		ID:           7,
		Kind:         DrawKindChance,
		Seed:         hex.EncodeToString(seed),
		TotalWeight:  ProbabilityScale,
		RawDrawValue: value,
	}
	assert.NoError(t, Verify(record, nil))

	threshold := value + 1
	record.WinThreshold = &threshold
	record.ResolvedOutcomeID = OutcomeWin
	assert.NoError(t, Verify(record, nil))

	record.ResolvedOutcomeID = OutcomeLoss
	assert.Error(t, Verify(record, nil))

	record.Seed = "zz"
	assert.Error(t, Verify(record, nil))
}

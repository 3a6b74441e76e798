package entities

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// SeedSize is the number of CSPRNG bytes consumed by one draw
const SeedSize = 32

// ProbabilityScale is the total used by chance draws: a probability p wins
// when the draw value is below p × ProbabilityScale.
const ProbabilityScale int64 = 1_000_000

// maxDerivationRounds bounds rejection sampling. Each round rejects with
// probability below 1/2, so exhausting it means the seed is unusable.
const maxDerivationRounds = 128

// DeriveDrawValue maps a seed to a uniform integer in [0, total). Each round
// hashes seed||counter with SHA-256 and rejects values from the biased tail,
// so anyone holding the seed can recompute the value.
func DeriveDrawValue(seed []byte, total int64) (int64, error) {
	if len(seed) != SeedSize {
		return 0, fmt.Errorf("%w: seed must be %d bytes, got %d", ErrDrawFailed, SeedSize, len(seed))
	}
	if total <= 0 {
		return 0, fmt.Errorf("%w: total must be positive", ErrDrawFailed)
	}

	t := uint64(total)
	// 2^64 mod t; values at or above 2^64 - rem would bias the modulo
	rem := (math.MaxUint64%t + 1) % t

	buf := make([]byte, SeedSize+8)
	copy(buf, seed)
	for counter := uint64(0); counter < maxDerivationRounds; counter++ {
		binary.BigEndian.PutUint64(buf[SeedSize:], counter)
		sum := sha256.Sum256(buf)
		v := binary.BigEndian.Uint64(sum[:8])
		if rem != 0 && v > math.MaxUint64-rem {
			continue
		}
		return int64(v % t), nil
	}
	return 0, fmt.Errorf("%w: rejection sampling exhausted", ErrDrawFailed)
}

// WinThreshold converts a probability in (0, 1] to the chance-draw threshold
func WinThreshold(probability decimal.Decimal) (int64, error) {
	if !probability.IsPositive() || probability.GreaterThan(decimal.NewFromInt(1)) {
		return 0, fmt.Errorf("win probability %s outside (0, 1]", probability.String())
	}
	return probability.Shift(WeightDecimals).Floor().IntPart(), nil
}

// Verify recomputes a table draw from its persisted seed and reports whether
// the stored value and outcome match.
func Verify(record *DrawRecord, table *RewardTable) error {
	seed, err := record.SeedBytes()
	if err != nil {
		return err
	}
	if record.Kind == DrawKindChance {
		value, err := DeriveDrawValue(seed, ProbabilityScale)
		if err != nil {
			return err
		}
		if value != record.RawDrawValue {
			return fmt.Errorf("draw %d: recomputed value %d, recorded %d", record.ID, value, record.RawDrawValue)
		}
		if record.WinThreshold != nil {
			won := value < *record.WinThreshold
			if won != (record.ResolvedOutcomeID == OutcomeWin) {
				return fmt.Errorf("draw %d: value %d against threshold %d does not give %s",
					record.ID, value, *record.WinThreshold, record.ResolvedOutcomeID)
			}
		}
		return nil
	}

	if table == nil {
		return fmt.Errorf("draw %d: reward table required", record.ID)
	}
	if table.Key != record.TableKey || table.Version != record.TableVersion {
		return fmt.Errorf("draw %d: table %s v%d does not match recorded %s v%d",
			record.ID, table.Key, table.Version, record.TableKey, record.TableVersion)
	}
	value, err := DeriveDrawValue(seed, int64(table.TotalWeight))
	if err != nil {
		return err
	}
	if value != record.RawDrawValue {
		return fmt.Errorf("draw %d: recomputed value %d, recorded %d", record.ID, value, record.RawDrawValue)
	}
	entry, index, err := table.Resolve(Weight(value))
	if err != nil {
		return err
	}
	if index != record.ResolvedIndex || entry.OutcomeID != record.ResolvedOutcomeID {
		return fmt.Errorf("draw %d: recomputed outcome %s, recorded %s", record.ID, entry.OutcomeID, record.ResolvedOutcomeID)
	}
	return nil
}

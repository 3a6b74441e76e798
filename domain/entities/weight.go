package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// WeightDecimals is the fixed-point precision of reward weights and draw values
const WeightDecimals = 6

// WeightScale is the number of weight units in 1.0
const WeightScale int64 = 1_000_000

// Weight is a non-negative fixed-point quantity with WeightDecimals places,
// stored as integer units so interval arithmetic is exact.
type Weight int64

// ParseWeight parses a decimal string such as "0.25" into a Weight
func ParseWeight(s string) (Weight, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid weight %q: %w", s, err)
	}
	return WeightFromDecimal(d)
}

// WeightFromDecimal converts a decimal to a Weight without rounding. Values
// with more than WeightDecimals fractional digits are rejected.
func WeightFromDecimal(d decimal.Decimal) (Weight, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("weight %s is negative", d.String())
	}
	scaled := d.Shift(WeightDecimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("weight %s exceeds %d decimal places", d.String(), WeightDecimals)
	}
	if !scaled.BigInt().IsInt64() {
		return 0, fmt.Errorf("weight %s overflows", d.String())
	}
	return Weight(scaled.IntPart()), nil
}

// WholeWeight returns n whole weight units (n × WeightScale)
func WholeWeight(n int64) Weight {
	return Weight(n * WeightScale)
}

// Units returns the raw integer representation
func (w Weight) Units() int64 {
	return int64(w)
}

// Decimal returns the weight as a decimal value
func (w Weight) Decimal() decimal.Decimal {
	return decimal.New(int64(w), -WeightDecimals)
}

func (w Weight) String() string {
	return w.Decimal().String()
}

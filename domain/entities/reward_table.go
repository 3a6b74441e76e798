package entities

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// PayoutKind is what a resolved reward entry grants
type PayoutKind string

const (
	PayoutKindItem       PayoutKind = "item"
	PayoutKindFragments  PayoutKind = "fragments"
	PayoutKindCurrency   PayoutKind = "currency"
	PayoutKindMultiplier PayoutKind = "multiplier"
	PayoutKindNothing    PayoutKind = "nothing"
)

// PayoutSpec describes the reward granted by an entry
type PayoutSpec struct {
	Kind           PayoutKind      `json:"kind"`
	ItemTemplateID int64           `json:"item_template_id,omitempty"`
	Quantity       int64           `json:"quantity,omitempty"`
	Currency       Currency        `json:"currency,omitempty"`
	Amount         int64           `json:"amount,omitempty"`
	Multiplier     decimal.Decimal `json:"multiplier"`
}

// Validate checks that the payout fields match its kind
func (p PayoutSpec) Validate() error {
	switch p.Kind {
	case PayoutKindItem:
		if p.ItemTemplateID <= 0 {
			return fmt.Errorf("item payout requires an item template")
		}
	case PayoutKindFragments:
		if p.ItemTemplateID <= 0 || p.Quantity <= 0 {
			return fmt.Errorf("fragment payout requires an item template and positive quantity")
		}
	case PayoutKindCurrency:
		if !p.Currency.IsCredit() || p.Amount <= 0 {
			return fmt.Errorf("currency payout requires a credit currency and positive amount")
		}
	case PayoutKindMultiplier:
		if p.Multiplier.IsNegative() {
			return fmt.Errorf("multiplier payout cannot be negative")
		}
	case PayoutKindNothing:
	default:
		return fmt.Errorf("unknown payout kind %q", p.Kind)
	}
	return nil
}

// RewardEntry is one weighted outcome of a reward table
type RewardEntry struct {
	OutcomeID string     `json:"outcome_id"`
	Weight    Weight     `json:"weight"`
	Payout    PayoutSpec `json:"payout"`
}

// Interval is the half-open range [Start, End) of draw values owned by an entry
type Interval struct {
	Index     int
	OutcomeID string
	Start     Weight
	End       Weight
}

// Contains reports whether v falls inside the interval
func (i Interval) Contains(v Weight) bool {
	return v >= i.Start && v < i.End
}

// RewardTable is an immutable, versioned weighted table. Entry order is part of
// its identity: reordering entries requires publishing a new version.
type RewardTable struct {
	ID          int64         `db:"id"`
	Key         string        `db:"table_key"`
	Version     int           `db:"version"`
	Entries     []RewardEntry `db:"entries"`
	TotalWeight Weight        `db:"total_weight"`
	PublishedAt time.Time     `db:"published_at"`
}

// NewRewardTable builds a table and caches its total weight
func NewRewardTable(key string, entries []RewardEntry) (*RewardTable, error) {
	table := &RewardTable{
		Key:     key,
		Entries: append([]RewardEntry(nil), entries...),
	}
	total, err := sumWeights(table.Entries)
	if err != nil {
		return nil, err
	}
	table.TotalWeight = total
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

func sumWeights(entries []RewardEntry) (Weight, error) {
	var total int64
	for _, e := range entries {
		if e.Weight <= 0 {
			return 0, fmt.Errorf("%w: entry %q has non-positive weight", ErrInvalidTable, e.OutcomeID)
		}
		if total > math.MaxInt64-int64(e.Weight) {
			return 0, fmt.Errorf("%w: total weight overflows", ErrInvalidTable)
		}
		total += int64(e.Weight)
	}
	return Weight(total), nil
}

// Validate enforces the table invariants
func (t *RewardTable) Validate() error {
	if t.Key == "" {
		return fmt.Errorf("%w: table key is required", ErrInvalidTable)
	}
	if len(t.Entries) == 0 {
		return fmt.Errorf("%w: table %s has no entries", ErrInvalidTable, t.Key)
	}
	seen := make(map[string]bool, len(t.Entries))
	for _, e := range t.Entries {
		if e.OutcomeID == "" {
			return fmt.Errorf("%w: entry without outcome id", ErrInvalidTable)
		}
		if seen[e.OutcomeID] {
			return fmt.Errorf("%w: duplicate outcome %q", ErrInvalidTable, e.OutcomeID)
		}
		seen[e.OutcomeID] = true
		if err := e.Payout.Validate(); err != nil {
			return fmt.Errorf("%w: outcome %q: %v", ErrInvalidTable, e.OutcomeID, err)
		}
	}
	total, err := sumWeights(t.Entries)
	if err != nil {
		return err
	}
	if total != t.TotalWeight {
		return fmt.Errorf("%w: cached total %s does not match entries %s", ErrInvalidTable, t.TotalWeight, total)
	}
	return nil
}

// CheckStakePayouts returns an error naming the first entry a wager game cannot
// settle. Stake games only pay multipliers of the stake, or nothing.
func (t *RewardTable) CheckStakePayouts() error {
	for _, e := range t.Entries {
		switch e.Payout.Kind {
		case PayoutKindMultiplier, PayoutKindNothing:
		default:
			return fmt.Errorf("%w: outcome %q pays %s", ErrInvalidTable, e.OutcomeID, e.Payout.Kind)
		}
	}
	return nil
}

// Resolve maps a draw value in [0, TotalWeight) to an entry by walking the
// entries in declared order. A value equal to a cumulative boundary belongs to
// the entry after the boundary.
func (t *RewardTable) Resolve(drawValue Weight) (*RewardEntry, int, error) {
	if drawValue < 0 || drawValue >= t.TotalWeight {
		return nil, -1, fmt.Errorf("%w: %s not in [0, %s)", ErrDrawOutOfRange, drawValue, t.TotalWeight)
	}
	var cumulative Weight
	for i := range t.Entries {
		cumulative += t.Entries[i].Weight
		if cumulative > drawValue {
			return &t.Entries[i], i, nil
		}
	}
	// Unreachable while TotalWeight matches the entries
	return nil, -1, fmt.Errorf("%w: no entry covers %s", ErrInvalidTable, drawValue)
}

// ResolveDecimal resolves a decimal draw value such as 0.5
func (t *RewardTable) ResolveDecimal(drawValue decimal.Decimal) (*RewardEntry, int, error) {
	w, err := WeightFromDecimal(drawValue)
	if err != nil {
		return nil, -1, fmt.Errorf("%w: %v", ErrDrawOutOfRange, err)
	}
	return t.Resolve(w)
}

// Intervals returns the half-open ranges owned by each entry, in order
func (t *RewardTable) Intervals() []Interval {
	intervals := make([]Interval, 0, len(t.Entries))
	var start Weight
	for i, e := range t.Entries {
		intervals = append(intervals, Interval{
			Index:     i,
			OutcomeID: e.OutcomeID,
			Start:     start,
			End:       start + e.Weight,
		})
		start += e.Weight
	}
	return intervals
}

// Probability returns the share of the total weight owned by entry i
func (t *RewardTable) Probability(i int) decimal.Decimal {
	if i < 0 || i >= len(t.Entries) || t.TotalWeight == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(t.Entries[i].Weight)).
		Div(decimal.NewFromInt(int64(t.TotalWeight)))
}

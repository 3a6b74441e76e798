package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Case is a purchasable container whose contents come from a reward table
type Case struct {
	ID             int64     `db:"id" json:"id"`
	Key            string    `db:"case_key" json:"key"`
	Name           string    `db:"name" json:"name"`
	CaseType       string    `db:"case_type" json:"type"`
	PriceCurrency  Currency  `db:"price_currency" json:"price_currency"`
	Price          int64     `db:"price" json:"price"`
	RewardTableKey string    `db:"reward_table_key" json:"reward_table_key"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// GameKind selects how a game resolves
type GameKind string

const (
	// GameKindTable draws from the game's reward table, each entry carries a multiplier
	GameKindTable GameKind = "table"
	// GameKindChance wins with a fixed probability and pays the game multiplier
	GameKindChance GameKind = "chance"
)

// Game is an instant wager game
type Game struct {
	ID             int64           `db:"id" json:"id"`
	Key            string          `db:"game_key" json:"key"`
	Name           string          `db:"name" json:"name"`
	Kind           GameKind        `db:"kind" json:"kind"`
	StakeCurrency  Currency        `db:"stake_currency" json:"stake_currency"`
	MinBet         int64           `db:"min_bet" json:"min_bet"`
	MaxBet         int64           `db:"max_bet" json:"max_bet"`
	WinMultiplier  decimal.Decimal `db:"win_multiplier" json:"win_multiplier"`
	WinProbability decimal.Decimal `db:"win_probability" json:"win_probability"`
	RewardTableKey *string         `db:"reward_table_key" json:"reward_table_key,omitempty"`
	Active         bool            `db:"active" json:"active"`
}

// ValidateStake checks the stake against the game's bet bounds
func (g *Game) ValidateStake(stake int64) error {
	if stake < g.MinBet || stake > g.MaxBet {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidBetSize, stake, g.MinBet, g.MaxBet)
	}
	return nil
}

// Payout returns stake × multiplier floored to whole minor units
func Payout(stake int64, multiplier decimal.Decimal) int64 {
	if stake <= 0 || !multiplier.IsPositive() {
		return 0
	}
	return decimal.NewFromInt(stake).Mul(multiplier).Floor().IntPart()
}

// ItemTemplate describes a kind of item ("skin") that cases can drop
type ItemTemplate struct {
	ID                int64  `db:"id" json:"id"`
	Name              string `db:"name" json:"name"`
	Weapon            string `db:"weapon" json:"weapon"`
	Rarity            string `db:"rarity" json:"rarity"`
	Price             int64  `db:"price" json:"price"`
	FragmentsRequired int64  `db:"fragments_required" json:"fragments_required"`
	WithdrawalFee     int64  `db:"withdrawal_fee" json:"withdrawal_fee"`
	ImageURL          string `db:"image_url" json:"image_url,omitempty"`
}

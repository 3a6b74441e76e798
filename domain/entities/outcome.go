package entities

import "github.com/shopspring/decimal"

// RewardOutcome is returned to the caller after a case is opened
type RewardOutcome struct {
	CaseKey          string         `json:"case_key"`
	OutcomeID        string         `json:"outcome_id"`
	PayoutKind       PayoutKind     `json:"payout_kind"`
	Item             *InventoryItem `json:"item,omitempty"`
	TemplateID       int64          `json:"template_id,omitempty"`
	FragmentQuantity int64          `json:"fragment_quantity,omitempty"`
	Currency         Currency       `json:"currency,omitempty"`
	Amount           int64          `json:"amount,omitempty"`
	PricePaid        int64          `json:"price_paid"`
	DrawID           int64          `json:"draw_id"`
	TableKey         string         `json:"table_key"`
	TableVersion     int            `json:"table_version"`
	Balances         *Balances      `json:"balances"`
}

// GameOutcome is returned to the caller after a wager resolves
type GameOutcome struct {
	GameKey    string          `json:"game_key"`
	OutcomeID  string          `json:"outcome_id"`
	Stake      int64           `json:"stake"`
	Currency   Currency        `json:"currency"`
	Won        bool            `json:"won"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Payout     int64           `json:"payout"`
	DrawID     int64           `json:"draw_id"`
	Balances   *Balances       `json:"balances"`
}

// Net returns the signed balance change of the wager
func (g *GameOutcome) Net() int64 {
	return g.Payout - g.Stake
}

// PurchaseResult is returned to the buyer of a listing
type PurchaseResult struct {
	Listing      *Listing       `json:"listing"`
	Item         *InventoryItem `json:"item"`
	Fee          int64          `json:"fee"`
	SellerCredit int64          `json:"seller_credit"`
	Balances     *Balances      `json:"balances"`
}

// ExchangeResult is returned when an item is exchanged for credits
type ExchangeResult struct {
	Item     *InventoryItem `json:"item"`
	Credited int64          `json:"credited"`
	Balances *Balances      `json:"balances"`
}

// CombineResult is returned when fragments are combined into an item
type CombineResult struct {
	Item          *InventoryItem `json:"item"`
	FragmentsUsed int64          `json:"fragments_used"`
	Balances      *Balances      `json:"balances"`
}

// DailyClaimResult is returned when the daily reward is claimed
type DailyClaimResult struct {
	Reward        int64     `json:"reward"`
	Streak        int       `json:"streak"`
	NextAvailable string    `json:"next_available"`
	Balances      *Balances `json:"balances"`
}

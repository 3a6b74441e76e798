package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// CaseDrop is one outcome a case can produce, with its odds
type CaseDrop struct {
	OutcomeID   string          `json:"outcome_id"`
	Payout      PayoutSpec      `json:"payout"`
	Template    *ItemTemplate   `json:"template,omitempty"`
	Weight      string          `json:"weight"`
	Probability decimal.Decimal `json:"probability"`
}

// CaseContents lists the drops of the table version a case currently opens with
type CaseContents struct {
	Case         *Case      `json:"case"`
	TableKey     string     `json:"table_key"`
	TableVersion int        `json:"table_version"`
	TotalWeight  string     `json:"total_weight"`
	Drops        []CaseDrop `json:"drops"`
}

// NewCaseContents describes table as the drop list of c. templates resolves
// item and fragment payouts to their catalog entries; missing ones are left nil.
func NewCaseContents(c *Case, table *RewardTable, templates map[int64]*ItemTemplate) *CaseContents {
	contents := &CaseContents{
		Case:         c,
		TableKey:     table.Key,
		TableVersion: table.Version,
		TotalWeight:  table.TotalWeight.String(),
		Drops:        make([]CaseDrop, 0, len(table.Entries)),
	}
	for i, e := range table.Entries {
		drop := CaseDrop{
			OutcomeID:   e.OutcomeID,
			Payout:      e.Payout,
			Weight:      e.Weight.String(),
			Probability: table.Probability(i),
		}
		if e.Payout.ItemTemplateID > 0 {
			drop.Template = templates[e.Payout.ItemTemplateID]
		}
		contents.Drops = append(contents.Drops, drop)
	}
	return contents
}

// CaseHistoryEntry is one past case opening of an account
type CaseHistoryEntry struct {
	DrawID       int64       `json:"draw_id"`
	CaseKey      string      `json:"case_key"`
	CaseName     string      `json:"case_name"`
	OutcomeID    string      `json:"outcome_id"`
	Payout       *PayoutSpec `json:"payout,omitempty"`
	TableVersion int         `json:"table_version"`
	OpenedAt     time.Time   `json:"opened_at"`
}

// MarketRole is the side an account took in a closed listing
type MarketRole string

const (
	MarketRoleSeller MarketRole = "seller"
	MarketRoleBuyer  MarketRole = "buyer"
)

// MarketHistoryEntry is a closed listing seen from one account
type MarketHistoryEntry struct {
	Listing *Listing   `json:"listing"`
	Role    MarketRole `json:"role"`
}

// NewMarketHistoryEntry tags l with the side accountID took in it
func NewMarketHistoryEntry(l *Listing, accountID int64) *MarketHistoryEntry {
	role := MarketRoleSeller
	if l.SellerID != accountID && l.BuyerID != nil && *l.BuyerID == accountID {
		role = MarketRoleBuyer
	}
	return &MarketHistoryEntry{Listing: l, Role: role}
}

// Referral is an account that signed up through a referrer
type Referral struct {
	AccountID int64     `db:"id" json:"account_id"`
	JoinedAt  time.Time `db:"created_at" json:"joined_at"`
}

// ReferralSummary lists an account's referrals and the bonus they earned it
type ReferralSummary struct {
	Referrals   []*Referral `json:"referrals"`
	Count       int         `json:"count"`
	BonusEarned int64       `json:"bonus_earned"`
}

package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// Currency identifies a ledger balance: one of the two credit currencies or a
// fragment count for a specific item template ("fragment:<templateID>").
type Currency string

const (
	CurrencyStandard Currency = "standard"
	CurrencyPremium  Currency = "premium"

	fragmentCurrencyPrefix = "fragment:"
)

// FragmentCurrency returns the currency used to track fragments of an item template
func FragmentCurrency(templateID int64) Currency {
	return Currency(fragmentCurrencyPrefix + strconv.FormatInt(templateID, 10))
}

// IsFragment returns true if the currency tracks fragments
func (c Currency) IsFragment() bool {
	_, ok := c.FragmentTemplateID()
	return ok
}

// FragmentTemplateID extracts the item template id from a fragment currency
func (c Currency) FragmentTemplateID() (int64, bool) {
	s := string(c)
	if !strings.HasPrefix(s, fragmentCurrencyPrefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(s, fragmentCurrencyPrefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Validate checks that the currency is one the ledger knows about
func (c Currency) Validate() error {
	switch c {
	case CurrencyStandard, CurrencyPremium:
		return nil
	}
	if c.IsFragment() {
		return nil
	}
	return fmt.Errorf("unknown currency %q", string(c))
}

// IsCredit returns true for the two spendable credit currencies
func (c Currency) IsCredit() bool {
	return c == CurrencyStandard || c == CurrencyPremium
}

func (c Currency) String() string {
	return string(c)
}

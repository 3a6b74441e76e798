package entities

import "fmt"

// CaseOpeningState tracks one case-opening request
type CaseOpeningState string

const (
	CaseOpeningRequested     CaseOpeningState = "requested"
	CaseOpeningFundsReserved CaseOpeningState = "funds_reserved"
	CaseOpeningDrawn         CaseOpeningState = "drawn"
	CaseOpeningSettled       CaseOpeningState = "settled"
	CaseOpeningRolledBack    CaseOpeningState = "rolled_back"
	CaseOpeningRejected      CaseOpeningState = "rejected"
)

var caseOpeningTransitions = map[CaseOpeningState][]CaseOpeningState{
	CaseOpeningRequested:     {CaseOpeningFundsReserved, CaseOpeningRejected},
	CaseOpeningFundsReserved: {CaseOpeningDrawn, CaseOpeningRolledBack},
	CaseOpeningDrawn:         {CaseOpeningSettled, CaseOpeningRolledBack},
	CaseOpeningRolledBack:    {CaseOpeningRejected},
}

// CaseOpening is the in-memory state machine of a single open request.
// It is not persisted; the committed transaction is the source of truth.
type CaseOpening struct {
	AccountID int64
	CaseKey   string
	State     CaseOpeningState
	History   []CaseOpeningState
	Cause     error
}

// NewCaseOpening starts a request in the Requested state
func NewCaseOpening(accountID int64, caseKey string) *CaseOpening {
	return &CaseOpening{
		AccountID: accountID,
		CaseKey:   caseKey,
		State:     CaseOpeningRequested,
		History:   []CaseOpeningState{CaseOpeningRequested},
	}
}

// CanTransitionTo checks whether moving to next is allowed
func (c *CaseOpening) CanTransitionTo(next CaseOpeningState) bool {
	for _, allowed := range caseOpeningTransitions[c.State] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Advance moves the request to next
func (c *CaseOpening) Advance(next CaseOpeningState) error {
	if !c.CanTransitionTo(next) {
		return fmt.Errorf("invalid case opening transition %s -> %s", c.State, next)
	}
	c.State = next
	c.History = append(c.History, next)
	return nil
}

// Fail records err and walks the request to Rejected, passing through
// RolledBack when funds were already reserved.
func (c *CaseOpening) Fail(err error) {
	c.Cause = err
	if c.IsTerminal() {
		return
	}
	if c.State != CaseOpeningRequested {
		_ = c.Advance(CaseOpeningRolledBack)
	}
	_ = c.Advance(CaseOpeningRejected)
}

// IsTerminal returns true for Settled and Rejected
func (c *CaseOpening) IsTerminal() bool {
	return c.State == CaseOpeningSettled || c.State == CaseOpeningRejected
}

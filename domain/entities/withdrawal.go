package entities

import "time"

// WithdrawalStatus is the state of a withdrawal request
type WithdrawalStatus string

const (
	WithdrawalPending   WithdrawalStatus = "pending"
	WithdrawalCompleted WithdrawalStatus = "completed"
	WithdrawalRejected  WithdrawalStatus = "rejected"
)

// WithdrawalRequest asks the fulfillment collaborator to deliver an item
// built from fragments. Fragments and fee are held (debited) when the request
// is made and refunded if it is rejected.
type WithdrawalRequest struct {
	ID            int64            `db:"id" json:"id"`
	AccountID     int64            `db:"account_id" json:"account_id"`
	TemplateID    int64            `db:"template_id" json:"template_id"`
	TradeLink     string           `db:"trade_link" json:"trade_link"`
	Status        WithdrawalStatus `db:"status" json:"status"`
	FragmentsUsed int64            `db:"fragments_used" json:"fragments_used"`
	PremiumFee    int64            `db:"premium_fee" json:"premium_fee"`
	Note          string           `db:"note" json:"note,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	ResolvedAt    *time.Time       `db:"resolved_at" json:"resolved_at,omitempty"`
}

// IsPending returns true while the request awaits fulfillment
func (w *WithdrawalRequest) IsPending() bool {
	return w.Status == WithdrawalPending
}

package events

import "skinvault/domain/entities"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeTransactionRecorded EventType = "transaction_recorded"
	EventTypeDrawRecorded        EventType = "draw_recorded"
	EventTypeCaseOpened          EventType = "case_opened"
	EventTypeGamePlayed          EventType = "game_played"
	EventTypeListingStateChanged EventType = "listing_state_changed"
	EventTypeWithdrawalChanged   EventType = "withdrawal_state_changed"
	EventTypeAccountCreated      EventType = "account_created"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// TransactionRecordedEvent is raised for every ledger row
type TransactionRecordedEvent struct {
	TransactionID int64                      `json:"transaction_id"`
	AccountID     int64                      `json:"account_id"`
	Delta         int64                      `json:"delta"`
	Currency      entities.Currency          `json:"currency"`
	Reason        entities.TransactionReason `json:"reason"`
	BalanceAfter  int64                      `json:"balance_after"`
	Version       int64                      `json:"version"`
	DrawID        *int64                     `json:"draw_id,omitempty"`
	ListingID     *int64                     `json:"listing_id,omitempty"`
}

func (e TransactionRecordedEvent) Type() EventType {
	return EventTypeTransactionRecorded
}

// DrawRecordedEvent carries the audit evidence of a draw
type DrawRecordedEvent struct {
	DrawID       int64             `json:"draw_id"`
	AccountID    int64             `json:"account_id"`
	Kind         entities.DrawKind `json:"kind"`
	TableKey     string            `json:"table_key"`
	TableVersion int               `json:"table_version"`
	Seed         string            `json:"seed"`
	RawDrawValue int64             `json:"raw_draw_value"`
	TotalWeight  int64             `json:"total_weight"`
	OutcomeID    string            `json:"outcome_id"`
}

func (e DrawRecordedEvent) Type() EventType {
	return EventTypeDrawRecorded
}

// CaseOpenedEvent is raised when a case opening settles
type CaseOpenedEvent struct {
	AccountID  int64               `json:"account_id"`
	CaseKey    string              `json:"case_key"`
	OutcomeID  string              `json:"outcome_id"`
	PayoutKind entities.PayoutKind `json:"payout_kind"`
	DrawID     int64               `json:"draw_id"`
	PricePaid  int64               `json:"price_paid"`
}

func (e CaseOpenedEvent) Type() EventType {
	return EventTypeCaseOpened
}

// GamePlayedEvent is raised when a wager resolves
type GamePlayedEvent struct {
	AccountID int64  `json:"account_id"`
	GameKey   string `json:"game_key"`
	Stake     int64  `json:"stake"`
	Payout    int64  `json:"payout"`
	Won       bool   `json:"won"`
	DrawID    int64  `json:"draw_id"`
}

func (e GamePlayedEvent) Type() EventType {
	return EventTypeGamePlayed
}

// ListingStateChangedEvent represents a market listing transition
type ListingStateChangedEvent struct {
	ListingID int64                 `json:"listing_id"`
	SellerID  int64                 `json:"seller_id"`
	ItemID    int64                 `json:"item_id"`
	BuyerID   *int64                `json:"buyer_id,omitempty"`
	OldState  entities.ListingState `json:"old_state,omitempty"`
	NewState  entities.ListingState `json:"new_state"`
	AskPrice  int64                 `json:"ask_price"`
}

func (e ListingStateChangedEvent) Type() EventType {
	return EventTypeListingStateChanged
}

// WithdrawalStateChangedEvent notifies the fulfillment collaborator
type WithdrawalStateChangedEvent struct {
	RequestID  int64                     `json:"request_id"`
	AccountID  int64                     `json:"account_id"`
	TemplateID int64                     `json:"template_id"`
	TradeLink  string                    `json:"trade_link"`
	Status     entities.WithdrawalStatus `json:"status"`
}

func (e WithdrawalStateChangedEvent) Type() EventType {
	return EventTypeWithdrawalChanged
}

// AccountCreatedEvent represents a first authentication
type AccountCreatedEvent struct {
	AccountID  int64  `json:"account_id"`
	ReferredBy *int64 `json:"referred_by,omitempty"`
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

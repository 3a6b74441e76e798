package entities

import "time"

// ItemState is the lifecycle state of an owned item
type ItemState string

const (
	ItemStateAvailable ItemState = "available"
	// ItemStateListed locks the item in escrow behind an active listing
	ItemStateListed    ItemState = "listed"
	ItemStateExchanged ItemState = "exchanged"
)

// InventoryItem is a single item instance owned by an account
type InventoryItem struct {
	ID           int64     `db:"id" json:"id"`
	AccountID    int64     `db:"account_id" json:"account_id"`
	TemplateID   int64     `db:"template_id" json:"template_id"`
	State        ItemState `db:"state" json:"state"`
	SourceDrawID *int64    `db:"source_draw_id" json:"source_draw_id,omitempty"`
	AcquiredAt   time.Time `db:"acquired_at" json:"acquired_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CheckUsableBy returns an error unless accountID owns the item and it is not
// locked or consumed.
func (i *InventoryItem) CheckUsableBy(accountID int64) error {
	if i.AccountID != accountID {
		return ErrItemNotOwned
	}
	switch i.State {
	case ItemStateAvailable:
		return nil
	case ItemStateListed:
		return ErrItemLocked
	default:
		return ErrItemNotOwned
	}
}

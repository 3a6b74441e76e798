package testutil

import (
	"context"
	"testing"

	"skinvault/database"

	"github.com/stretchr/testify/require"
)

// Seeded catalog identifiers
const (
	StandardCaseKey = "standard"
	PremiumCaseKey  = "premium"
	DiceGameKey     = "dice"
	SlotsGameKey    = "slots"
	P250TemplateID  = int64(1)
	GlockTemplateID = int64(2)
	AK47TemplateID  = int64(4)
	PlatformAccount = int64(0)
)

// CreateFundedAccount inserts an account with the given balances directly,
// bypassing the ledger. The ledger rows for the opening balance are written
// too so that conservation checks hold.
func CreateFundedAccount(t *testing.T, db *database.DB, accountID, standard, premium int64) {
	t.Helper()
	ctx := context.Background()

	_, err := db.Exec(ctx, `
		INSERT INTO accounts (id, standard_balance, premium_balance)
		VALUES ($1, $2, $3)
	`, accountID, standard, premium)
	require.NoError(t, err)

	if standard > 0 {
		insertOpeningRow(t, db, accountID, "standard", standard)
	}
	if premium > 0 {
		insertOpeningRow(t, db, accountID, "premium", premium)
	}
}

// GrantFragments sets the fragment count of an account for a template
func GrantFragments(t *testing.T, db *database.DB, accountID, templateID, count int64) {
	t.Helper()
	ctx := context.Background()

	_, err := db.Exec(ctx, `
		INSERT INTO account_fragments (account_id, template_id, count)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, template_id) DO UPDATE SET count = EXCLUDED.count
	`, accountID, templateID, count)
	require.NoError(t, err)
}

// CreateItem inserts an available inventory item and returns its id
func CreateItem(t *testing.T, db *database.DB, accountID, templateID int64) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(context.Background(), `
		INSERT INTO inventory_items (account_id, template_id)
		VALUES ($1, $2)
		RETURNING id
	`, accountID, templateID).Scan(&id)
	require.NoError(t, err)
	return id
}

func insertOpeningRow(t *testing.T, db *database.DB, accountID int64, currency string, amount int64) {
	_, err := db.Exec(context.Background(), `
		INSERT INTO transactions (account_id, delta, currency, reason, balance_after, metadata)
		VALUES ($1, $2, $3, 'daily_reward', $2, '{"opening_balance": true}')
	`, accountID, amount, currency)
	require.NoError(t, err)
}

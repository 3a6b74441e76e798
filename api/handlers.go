package api

import (
	"context"
	"net/http"
	"time"

	"skinvault/domain/entities"
)

// Engine is the part of the application engine exposed over HTTP
type Engine interface {
	Authenticate(ctx context.Context, accountID int64, referrerID *int64) (*entities.Account, bool, error)

	OpenCase(ctx context.Context, accountID int64, idempotencyKey, caseKey string) (*entities.RewardOutcome, error)
	PlayGame(ctx context.Context, accountID int64, idempotencyKey, gameKey string, stake int64) (*entities.GameOutcome, error)
	ListItem(ctx context.Context, sellerID int64, idempotencyKey string, itemID, price int64, durationDays int) (*entities.Listing, error)
	PurchaseListing(ctx context.Context, buyerID int64, idempotencyKey string, listingID int64) (*entities.PurchaseResult, error)
	CancelListing(ctx context.Context, sellerID int64, idempotencyKey string, listingID int64) (*entities.Listing, error)
	CombineFragments(ctx context.Context, accountID int64, idempotencyKey string, templateID int64) (*entities.CombineResult, error)
	ExchangeItem(ctx context.Context, accountID int64, idempotencyKey string, itemID int64) (*entities.ExchangeResult, error)
	ClaimDaily(ctx context.Context, accountID int64, idempotencyKey string) (*entities.DailyClaimResult, error)
	RequestWithdrawal(ctx context.Context, accountID int64, idempotencyKey string, templateID int64, tradeLink string) (*entities.WithdrawalRequest, error)
	ConfirmWithdrawal(ctx context.Context, requestID int64) (*entities.WithdrawalRequest, error)
	RejectWithdrawal(ctx context.Context, requestID int64, note string) (*entities.WithdrawalRequest, error)

	GetBalances(ctx context.Context, accountID int64) (*entities.Balances, error)
	ListTransactions(ctx context.Context, accountID int64, limit int) ([]*entities.Transaction, error)
	ListInventory(ctx context.Context, accountID int64) ([]*entities.InventoryItem, error)
	ListFragments(ctx context.Context, accountID int64) (map[int64]int64, error)
	ListWithdrawals(ctx context.Context, accountID int64) ([]*entities.WithdrawalRequest, error)
	ListCases(ctx context.Context) ([]*entities.Case, error)
	CaseDrops(ctx context.Context, caseKey string) (*entities.CaseContents, error)
	CaseHistory(ctx context.Context, accountID int64, limit int) ([]*entities.CaseHistoryEntry, error)
	ListGames(ctx context.Context) ([]*entities.Game, error)
	BrowseListings(ctx context.Context, limit, offset int) ([]*entities.Listing, error)
	MarketHistory(ctx context.Context, accountID int64, limit int) ([]*entities.MarketHistoryEntry, error)
	ListReferrals(ctx context.Context, accountID int64) (*entities.ReferralSummary, error)
	VerifyDraw(ctx context.Context, drawID int64) (*entities.DrawVerification, error)
}

type handlers struct {
	engine Engine
}

type playGameRequest struct {
	Stake int64 `json:"stake" validate:"required,gt=0"`
}

type createListingRequest struct {
	ItemID       int64 `json:"itemId" validate:"required,gt=0"`
	Price        int64 `json:"price" validate:"required,gt=0"`
	DurationDays int   `json:"durationDays" validate:"required,oneof=1 3 7 14 30"`
}

type withdrawalRequest struct {
	TemplateID int64  `json:"templateId" validate:"required,gt=0"`
	TradeLink  string `json:"tradeLink" validate:"required,max=512"`
}

type rejectWithdrawalRequest struct {
	Note string `json:"note" validate:"max=1000"`
}

type sessionResponse struct {
	AccountID int64              `json:"account_id"`
	Created   bool               `json:"created"`
	Balances  *entities.Balances `json:"balances"`
}

type inventoryResponse struct {
	Items     []*entities.InventoryItem `json:"items"`
	Fragments map[int64]int64           `json:"fragments"`
}

func (h *handlers) createSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := AccountIDFromContext(ctx)

	account, created, err := h.engine.Authenticate(ctx, accountID, referrerFromContext(ctx))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, sessionResponse{AccountID: accountID, Created: created, Balances: account.Snapshot()})
}

func (h *handlers) getBalance(w http.ResponseWriter, r *http.Request) {
	balances, err := h.engine.GetBalances(r.Context(), AccountIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, balances)
}

func (h *handlers) listTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	history, err := h.engine.ListTransactions(r.Context(), AccountIDFromContext(r.Context()), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, history)
}

func (h *handlers) getInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := AccountIDFromContext(ctx)

	items, err := h.engine.ListInventory(ctx, accountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	fragments, err := h.engine.ListFragments(ctx, accountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, inventoryResponse{Items: items, Fragments: fragments})
}

func (h *handlers) listCases(w http.ResponseWriter, r *http.Request) {
	cases, err := h.engine.ListCases(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, cases)
}

func (h *handlers) caseDrops(w http.ResponseWriter, r *http.Request) {
	contents, err := h.engine.CaseDrops(r.Context(), urlParam(r, "caseKey"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, contents)
}

func (h *handlers) caseHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	history, err := h.engine.CaseHistory(r.Context(), AccountIDFromContext(r.Context()), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, history)
}

func (h *handlers) listGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.engine.ListGames(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, games)
}

func (h *handlers) openCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	outcome, err := h.engine.OpenCase(ctx, AccountIDFromContext(ctx), idempotencyKeyFromContext(ctx), urlParam(r, "caseKey"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, outcome)
}

func (h *handlers) playGame(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req playGameRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	outcome, err := h.engine.PlayGame(ctx, AccountIDFromContext(ctx), idempotencyKeyFromContext(ctx), urlParam(r, "gameKey"), req.Stake)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, outcome)
}

func (h *handlers) exchangeItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	itemID, err := pathID(r, "itemID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.engine.ExchangeItem(ctx, AccountIDFromContext(ctx), idempotencyKeyFromContext(ctx), itemID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, result)
}

func (h *handlers) combineFragments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	templateID, err := pathID(r, "templateID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.engine.CombineFragments(ctx, AccountIDFromContext(ctx), idempotencyKeyFromContext(ctx), templateID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, result)
}

func (h *handlers) browseListings(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	listings, err := h.engine.BrowseListings(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, listings)
}

func (h *handlers) marketHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	history, err := h.engine.MarketHistory(r.Context(), AccountIDFromContext(r.Context()), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, history)
}

func (h *handlers) createListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createListingRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	listing, err := h.engine.ListItem(ctx, AccountIDFromContext(ctx), idempotencyKeyFromContext(ctx), req.ItemID, req.Price, req.DurationDays)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, successEnvelope{Data: listing})
}

func (h *handlers) purchaseListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listingID, err := pathID(r, "listingID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.engine.PurchaseListing(ctx, AccountIDFromContext(ctx), idempotencyKeyFromContext(ctx), listingID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, result)
}

func (h *handlers) cancelListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listingID, err := pathID(r, "listingID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	listing, err := h.engine.CancelListing(ctx, AccountIDFromContext(ctx), idempotencyKeyFromContext(ctx), listingID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, listing)
}

func (h *handlers) claimDaily(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.engine.ClaimDaily(ctx, AccountIDFromContext(ctx), idempotencyKeyFromContext(ctx))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, result)
}

func (h *handlers) listReferrals(w http.ResponseWriter, r *http.Request) {
	summary, err := h.engine.ListReferrals(r.Context(), AccountIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, summary)
}

func (h *handlers) requestWithdrawal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req withdrawalRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	request, err := h.engine.RequestWithdrawal(ctx, AccountIDFromContext(ctx), idempotencyKeyFromContext(ctx), req.TemplateID, req.TradeLink)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, successEnvelope{Data: request})
}

func (h *handlers) listWithdrawals(w http.ResponseWriter, r *http.Request) {
	requests, err := h.engine.ListWithdrawals(r.Context(), AccountIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, requests)
}

func (h *handlers) verifyDraw(w http.ResponseWriter, r *http.Request) {
	drawID, err := pathID(r, "drawID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	verification, err := h.engine.VerifyDraw(r.Context(), drawID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	// Draws are audit evidence for their owner only
	if verification.Record.AccountID != AccountIDFromContext(r.Context()) {
		writeError(w, r, entities.ErrNotFound)
		return
	}
	writeSuccess(w, verification)
}

func (h *handlers) confirmWithdrawal(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathID(r, "requestID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	request, err := h.engine.ConfirmWithdrawal(r.Context(), requestID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, request)
}

func (h *handlers) rejectWithdrawal(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathID(r, "requestID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req rejectWithdrawalRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	request, err := h.engine.RejectWithdrawal(r.Context(), requestID, req.Note)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, request)
}

func (h *handlers) live(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]string{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

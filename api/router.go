package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig holds the secrets the router needs
type RouterConfig struct {
	JWTSecret    string
	JWTIssuer    string
	ServiceToken string
}

// NewRouter builds the HTTP routes
func NewRouter(cfg RouterConfig, engine Engine) http.Handler {
	h := &handlers{engine: engine}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		RequestLogger,
	)

	r.Get("/health/live", h.live)

	r.Route("/v1", func(r chi.Router) {
		r.Use(Auth(cfg.JWTSecret, cfg.JWTIssuer))

		r.Post("/session", h.createSession)
		r.Get("/balance", h.getBalance)
		r.Get("/transactions", h.listTransactions)
		r.Get("/inventory", h.getInventory)
		r.Get("/cases", h.listCases)
		r.Get("/cases/history", h.caseHistory)
		r.Get("/cases/{caseKey}/drops", h.caseDrops)
		r.Get("/games", h.listGames)
		r.Get("/market/listings", h.browseListings)
		r.Get("/market/history", h.marketHistory)
		r.Get("/referrals", h.listReferrals)
		r.Get("/withdrawals", h.listWithdrawals)
		r.Get("/draws/{drawID}", h.verifyDraw)

		r.Group(func(r chi.Router) {
			r.Use(RequireIdempotencyKey)

			r.Post("/cases/{caseKey}/open", h.openCase)
			r.Post("/games/{gameKey}/play", h.playGame)
			r.Post("/inventory/{itemID}/exchange", h.exchangeItem)
			r.Post("/fragments/{templateID}/combine", h.combineFragments)
			r.Post("/market/listings", h.createListing)
			r.Post("/market/listings/{listingID}/purchase", h.purchaseListing)
			r.Post("/market/listings/{listingID}/cancel", h.cancelListing)
			r.Post("/daily", h.claimDaily)
			r.Post("/withdrawals", h.requestWithdrawal)
		})
	})

	r.Route("/internal", func(r chi.Router) {
		r.Use(ServiceToken(cfg.ServiceToken))

		r.Post("/withdrawals/{requestID}/confirm", h.confirmWithdrawal)
		r.Post("/withdrawals/{requestID}/reject", h.rejectWithdrawal)
	})

	return r
}

func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

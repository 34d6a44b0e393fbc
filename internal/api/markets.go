package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finhub-network/finhub/internal/infra/observability"
)

// ─── Prediction Market Handlers ─────────────────────────────────────────────
//
// GET  /api/predictions              — list all markets
// POST /api/predictions              — action create | stake
// GET  /api/predictions/{id}         — one market
// POST /api/predictions/{id}/resolve — creator settles the market
// POST /api/predictions/{id}/claim   — winner claims pro-rata payout

// handleListMarkets returns all markets in creation order.
func (s *Server) handleListMarkets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.markets.List())
}

// handleGetMarket returns one market.
func (s *Server) handleGetMarket(w http.ResponseWriter, r *http.Request) {
	market, err := s.markets.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, market)
}

type marketActionRequest struct {
	Action   string   `json:"action"`
	Account  string   `json:"account"`
	MarketID string   `json:"marketId"`
	Question string   `json:"question"`
	Outcomes []string `json:"outcomes"`
	Outcome  string   `json:"outcome"`
	Amount   *float64 `json:"amount"`
}

// handleMarketAction dispatches create and stake.
func (s *Server) handleMarketAction(w http.ResponseWriter, r *http.Request) {
	var req marketActionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Action {
	case "create":
		if req.Account == "" || req.Question == "" || len(req.Outcomes) < 2 {
			writeError(w, http.StatusBadRequest, "invalid fields for create action")
			return
		}
		market, err := s.markets.Create(req.Question, req.Account, req.Outcomes)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		observability.MarketOperations.WithLabelValues("create").Inc()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"market":  market,
		})

	case "stake":
		if req.Account == "" || req.MarketID == "" || req.Outcome == "" || req.Amount == nil {
			writeError(w, http.StatusBadRequest, "missing fields for stake action")
			return
		}
		market, err := s.markets.Stake(req.MarketID, req.Account, req.Outcome, *req.Amount)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		s.accounts.ApplyDelta(req.Account, 25, "Staked on Market", s.today())
		observability.MarketOperations.WithLabelValues("stake").Inc()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"market":  market,
		})

	default:
		writeError(w, http.StatusBadRequest, `invalid action. Use "create" or "stake"`)
	}
}

type resolveRequest struct {
	Account string `json:"account"`
	Winner  string `json:"winner"`
}

// handleResolve settles a market. Only the creator may resolve.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decodeBody(r, &req); err != nil || req.Account == "" || req.Winner == "" {
		writeError(w, http.StatusBadRequest, "missing account or winner")
		return
	}

	id := chi.URLParam(r, "id")
	market, err := s.markets.Get(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if market.Creator != req.Account {
		writeError(w, http.StatusForbidden, "only the market creator can resolve")
		return
	}

	resolved, err := s.markets.Resolve(id, req.Winner)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	observability.MarketOperations.WithLabelValues("resolve").Inc()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"market":  resolved,
	})
}

type claimRequest struct {
	Account string `json:"account"`
}

// handleClaim pays out a winning stake once.
func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := decodeBody(r, &req); err != nil || req.Account == "" {
		writeError(w, http.StatusBadRequest, "missing account")
		return
	}

	payout, err := s.markets.Claim(chi.URLParam(r, "id"), req.Account)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	observability.MarketOperations.WithLabelValues("claim").Inc()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"account": req.Account,
		"payout":  payout,
	})
}

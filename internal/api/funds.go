package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finhub-network/finhub/internal/infra/observability"
)

// ─── Chit Fund Handlers ─────────────────────────────────────────────────────
//
// GET  /api/chit-funds                 — list all funds
// POST /api/chit-funds                 — action create | join
// GET  /api/chit-funds/{id}            — one fund
// POST /api/chit-funds/{id}/contribute — member tops up the pot
// POST /api/chit-funds/{id}/distribute — creator pays the pot out

// handleListFunds returns all chit funds in creation order.
func (s *Server) handleListFunds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.funds.List())
}

// handleGetFund returns one fund.
func (s *Server) handleGetFund(w http.ResponseWriter, r *http.Request) {
	fund, err := s.funds.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fund)
}

type fundActionRequest struct {
	Action        string   `json:"action"`
	Account       string   `json:"account"`
	FundID        string   `json:"fundId"`
	Name          string   `json:"name"`
	PledgedAmount *float64 `json:"pledgedAmount"`
	CycleLength   int      `json:"cycleLength"`
}

// handleFundAction dispatches create and join, the two mutations the
// dashboard posts to the collection route.
func (s *Server) handleFundAction(w http.ResponseWriter, r *http.Request) {
	var req fundActionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Action {
	case "create":
		if req.Account == "" || req.Name == "" || req.PledgedAmount == nil || req.CycleLength == 0 {
			writeError(w, http.StatusBadRequest, "missing fields for create action")
			return
		}
		fund, err := s.funds.Create(req.Name, req.Account, *req.PledgedAmount, req.CycleLength)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		s.accounts.ApplyDelta(req.Account, 100, "Created Chit Fund", s.today())
		observability.FundOperations.WithLabelValues("create").Inc()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"fund":    fund,
		})

	case "join":
		if req.Account == "" || req.FundID == "" || req.PledgedAmount == nil {
			writeError(w, http.StatusBadRequest, "missing fields for join action")
			return
		}
		fund, err := s.funds.Join(req.FundID, req.Account, *req.PledgedAmount)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		s.accounts.ApplyDelta(req.Account, 10, "Joined Chit Fund", s.today())
		observability.FundOperations.WithLabelValues("join").Inc()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"fund":    fund,
		})

	default:
		writeError(w, http.StatusBadRequest, `invalid action. Use "create" or "join"`)
	}
}

type contributeRequest struct {
	Account string   `json:"account"`
	Amount  *float64 `json:"amount"`
}

// handleContribute tops up the fund pot from a member.
func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	var req contributeRequest
	if err := decodeBody(r, &req); err != nil || req.Account == "" || req.Amount == nil {
		writeError(w, http.StatusBadRequest, "missing account or amount")
		return
	}

	fund, err := s.funds.Contribute(chi.URLParam(r, "id"), req.Account, *req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	observability.FundOperations.WithLabelValues("contribute").Inc()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"fund":    fund,
	})
}

type distributeRequest struct {
	Account   string `json:"account"`
	Recipient string `json:"recipient"`
}

// handleDistribute pays the pot to one member. Only the fund creator may
// distribute, and each member receives at most once.
func (s *Server) handleDistribute(w http.ResponseWriter, r *http.Request) {
	var req distributeRequest
	if err := decodeBody(r, &req); err != nil || req.Account == "" || req.Recipient == "" {
		writeError(w, http.StatusBadRequest, "missing account or recipient")
		return
	}

	id := chi.URLParam(r, "id")
	fund, err := s.funds.Get(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if fund.Creator != req.Account {
		writeError(w, http.StatusForbidden, "only the fund creator can distribute")
		return
	}

	fund, payout, err := s.funds.Distribute(id, req.Recipient)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	observability.FundOperations.WithLabelValues("distribute").Inc()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"fund":    fund,
		"payout":  payout,
	})
}

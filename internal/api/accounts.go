package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finhub-network/finhub/internal/infra/observability"
)

// ─── Account & Reputation Handlers ──────────────────────────────────────────
//
// GET  /api/user/{id}            — full account state (strict: 404)
// POST /api/stake                — move balance into stake
// POST /api/join-chit            — debit balance, +10 reputation
// POST /api/reputation-update    — apply points to an existing account
// GET  /api/reputation/{account} — score + history (lenient: auto-create)
// POST /api/reputation           — apply delta with an action label
// GET  /api/yield/{user}         — accrue and report yield

// handleGetUser returns the full account record.
// GET /api/user/{id}
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	acc, err := s.accounts.Get(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

type stakeRequest struct {
	User   string   `json:"user"`
	Amount *float64 `json:"amount"`
}

// handleStake moves amount from balance to stake.
// POST /api/stake
func (s *Server) handleStake(w http.ResponseWriter, r *http.Request) {
	var req stakeRequest
	if err := decodeBody(r, &req); err != nil || req.User == "" || req.Amount == nil {
		writeError(w, http.StatusBadRequest, "invalid request, provide user and amount (number)")
		return
	}
	if *req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	acc, err := s.accounts.StakeFunds(req.User, *req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	observability.StakedAmount.Add(*req.Amount)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    acc,
	})
}

// handleJoinChit debits the joining amount and rewards the account with
// +10 reputation.
// POST /api/join-chit
func (s *Server) handleJoinChit(w http.ResponseWriter, r *http.Request) {
	var req stakeRequest
	if err := decodeBody(r, &req); err != nil || req.User == "" || req.Amount == nil {
		writeError(w, http.StatusBadRequest, "invalid request, provide user and amount (number)")
		return
	}
	if *req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	if _, err := s.accounts.Debit(req.User, *req.Amount); err != nil {
		writeDomainError(w, err)
		return
	}
	acc := s.accounts.ApplyDelta(req.User, 10, "Joined Chit Fund", s.today())
	observability.ReputationUpdates.WithLabelValues("up").Inc()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    acc,
	})
}

type reputationUpdateRequest struct {
	User   string `json:"user"`
	Points *int   `json:"points"`
}

// handleReputationUpdate applies points to an existing account's score.
// Strict: missing accounts surface 404 rather than silently defaulting.
// POST /api/reputation-update
func (s *Server) handleReputationUpdate(w http.ResponseWriter, r *http.Request) {
	var req reputationUpdateRequest
	if err := decodeBody(r, &req); err != nil || req.User == "" || req.Points == nil {
		writeError(w, http.StatusBadRequest, "invalid request, provide user and points (number)")
		return
	}

	if _, err := s.accounts.Get(req.User); err != nil {
		writeDomainError(w, err)
		return
	}
	acc := s.accounts.ApplyDelta(req.User, *req.Points, "Reputation Update", s.today())
	observability.ReputationUpdates.WithLabelValues(direction(*req.Points)).Inc()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    acc,
	})
}

// handleGetReputation returns score and history for an account, creating
// it with defaults on first reference (lenient endpoint: the dashboard
// polls this before any mutation exists).
// GET /api/reputation/{account}
func (s *Server) handleGetReputation(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	acc := s.accounts.GetOrCreate(account)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"account": acc.ID,
		"score":   acc.ReputationScore,
		"history": acc.History,
	})
}

type reputationPostRequest struct {
	Account string `json:"account"`
	Action  string `json:"action"`
	Delta   *int   `json:"delta"`
}

// handlePostReputation applies a labelled delta, auto-creating the
// account when absent.
// POST /api/reputation
func (s *Server) handlePostReputation(w http.ResponseWriter, r *http.Request) {
	var req reputationPostRequest
	if err := decodeBody(r, &req); err != nil || req.Account == "" || req.Action == "" || req.Delta == nil {
		writeError(w, http.StatusBadRequest, "missing account, action, or delta")
		return
	}

	acc := s.accounts.ApplyDelta(req.Account, *req.Delta, req.Action, s.today())
	observability.ReputationUpdates.WithLabelValues(direction(*req.Delta)).Inc()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"reputation": map[string]interface{}{
			"account": acc.ID,
			"score":   acc.ReputationScore,
			"history": acc.History,
		},
	})
}

// handleYield accrues yield on the account's stake since the last call.
// GET /api/yield/{user}
func (s *Server) handleYield(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	res, err := s.accounts.Accrue(user)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	observability.YieldAccruals.Inc()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"user":           res.Account,
		"yieldSinceLast": res.YieldSinceLast,
		"yieldAccrued":   res.YieldAccrued,
		"elapsedSeconds": res.ElapsedSeconds,
	})
}

func direction(delta int) string {
	if delta < 0 {
		return "down"
	}
	return "up"
}

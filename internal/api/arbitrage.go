package api

import (
	"net/http"

	"github.com/finhub-network/finhub/internal/infra/observability"
)

// ─── Arbitrage Handlers ─────────────────────────────────────────────────────
//
// GET  /api/arbitrage          — list current suggestions
// POST /api/arbitrage/simulate — run a mock auto-trade

// handleListSuggestions returns the current suggestion catalog.
func (s *Server) handleListSuggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.arbitrage.List())
}

type simulateRequest struct {
	SuggestionID string `json:"suggestionId"`
	Account      string `json:"account"`
}

// handleSimulate runs a mock trade against one suggestion and, when the
// durable store is wired, records the result for audit.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := decodeBody(r, &req); err != nil || req.SuggestionID == "" || req.Account == "" {
		writeError(w, http.StatusBadRequest, "missing suggestionId or account")
		return
	}

	res, err := s.arbitrage.Simulate(req.SuggestionID, req.Account)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	observability.Simulations.Inc()

	if s.simAuditor != nil {
		s.simAuditor.RecordSimulation(res)
	}
	writeJSON(w, http.StatusOK, res)
}

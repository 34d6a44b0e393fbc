// Package api provides the FinHub HTTP server: account, reputation and
// yield endpoints backed by the ledger store, plus chit fund, prediction
// market and arbitrage feature routes.
//
// The request layer owns input validation (required fields, numeric
// types, positive amounts) and status mapping: 400 for malformed input,
// 404 for missing records, 200 with a {success: true, ...} envelope
// otherwise. The core packages assume pre-validated values.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finhub-network/finhub/internal/app/arbitrage"
	"github.com/finhub-network/finhub/internal/app/chitfund"
	"github.com/finhub-network/finhub/internal/app/prediction"
	"github.com/finhub-network/finhub/internal/domain"
	"github.com/finhub-network/finhub/internal/infra/observability"
	"github.com/finhub-network/finhub/internal/ledger"
)

// Version is reported by /api/version.
const Version = "0.1.0"

// Server is the FinHub HTTP API server.
type Server struct {
	accounts   *ledger.Store
	funds      *chitfund.Service
	markets    *prediction.Service
	arbitrage  *arbitrage.Service
	simAuditor SimulationAuditor

	metricsEnabled bool

	// Injectable clock for event dates and timestamps.
	now func() time.Time
}

// SimulationAuditor records simulated trades. Optional; wired when the
// durable store is enabled.
type SimulationAuditor interface {
	RecordSimulation(res domain.SimulationResult) error
}

// NewServer creates a new API server.
func NewServer(accounts *ledger.Store, funds *chitfund.Service, markets *prediction.Service, arb *arbitrage.Service) *Server {
	return &Server{
		accounts:  accounts,
		funds:     funds,
		markets:   markets,
		arbitrage: arb,
		now:       time.Now,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetSimulationAuditor wires the simulation audit sink.
func (s *Server) SetSimulationAuditor(a SimulationAuditor) { s.simAuditor = a }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Minute))
	r.Use(corsMiddleware)
	r.Use(observability.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "FinHub backend running",
		})
	})

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": Version,
		})
	})

	// Account, reputation and yield endpoints
	r.Get("/api/user/{id}", s.handleGetUser)
	r.Post("/api/stake", s.handleStake)
	r.Post("/api/join-chit", s.handleJoinChit)
	r.Post("/api/reputation-update", s.handleReputationUpdate)
	r.Get("/api/reputation/{account}", s.handleGetReputation)
	r.Post("/api/reputation", s.handlePostReputation)
	r.Get("/api/yield/{user}", s.handleYield)

	// Chit fund endpoints
	r.Route("/api/chit-funds", func(r chi.Router) {
		r.Get("/", s.handleListFunds)
		r.Post("/", s.handleFundAction)
		r.Get("/{id}", s.handleGetFund)
		r.Post("/{id}/contribute", s.handleContribute)
		r.Post("/{id}/distribute", s.handleDistribute)
	})

	// Prediction market endpoints
	r.Route("/api/predictions", func(r chi.Router) {
		r.Get("/", s.handleListMarkets)
		r.Post("/", s.handleMarketAction)
		r.Get("/{id}", s.handleGetMarket)
		r.Post("/{id}/resolve", s.handleResolve)
		r.Post("/{id}/claim", s.handleClaim)
	})

	// Arbitrage endpoints
	r.Get("/api/arbitrage", s.handleListSuggestions)
	r.Post("/api/arbitrage/simulate", s.handleSimulate)

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "FinHub backend running",
		})
	})

	return r
}

// today renders the server clock as a calendar date for audit rows.
func (s *Server) today() string {
	return s.now().UTC().Format(time.DateOnly)
}

// ─── Response Helpers ───────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}

// writeDomainError maps a domain error to its HTTP status.
func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

// statusFor maps domain sentinel errors to HTTP statuses: absent records
// are 404, everything else a caller-side 400.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrFundNotFound),
		errors.Is(err, domain.ErrMarketNotFound),
		errors.Is(err, domain.ErrSuggestionNotFound),
		errors.Is(err, domain.ErrNoStake):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// decodeBody decodes a JSON request body, rejecting unknown garbage early.
func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// corsMiddleware adds CORS headers for the dashboard frontend.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Package observability exposes Prometheus metrics for the ledger and
// the HTTP API, served on /metrics when enabled in config.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Ledger Metrics ─────────────────────────────────────────────────────────

// ReputationUpdates tracks applied reputation deltas by direction.
var ReputationUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "finhub",
	Subsystem: "ledger",
	Name:      "reputation_updates_total",
	Help:      "Total reputation delta applications by direction.",
}, []string{"direction"})

// YieldAccruals tracks completed yield accrual computations.
var YieldAccruals = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "finhub",
	Subsystem: "ledger",
	Name:      "yield_accruals_total",
	Help:      "Total yield accrual computations.",
})

// AccountsCreated tracks lazily created accounts.
var AccountsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "finhub",
	Subsystem: "ledger",
	Name:      "accounts_created_total",
	Help:      "Total accounts created on first reference.",
})

// StakedAmount tracks the cumulative amount moved from balance to stake.
var StakedAmount = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "finhub",
	Subsystem: "ledger",
	Name:      "staked_amount_total",
	Help:      "Cumulative amount staked across all accounts.",
})

// ─── Feature Metrics ────────────────────────────────────────────────────────

// FundOperations tracks chit fund operations by kind.
var FundOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "finhub",
	Subsystem: "chitfund",
	Name:      "operations_total",
	Help:      "Total chit fund operations by kind.",
}, []string{"op"})

// MarketOperations tracks prediction market operations by kind.
var MarketOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "finhub",
	Subsystem: "prediction",
	Name:      "operations_total",
	Help:      "Total prediction market operations by kind.",
}, []string{"op"})

// Simulations tracks arbitrage trade simulations.
var Simulations = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "finhub",
	Subsystem: "arbitrage",
	Name:      "simulations_total",
	Help:      "Total simulated arbitrage trades.",
})

// ─── HTTP Metrics ───────────────────────────────────────────────────────────

// RequestsTotal tracks HTTP requests by route pattern and status class.
var RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "finhub",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "Total HTTP requests by route and status code.",
}, []string{"route", "status"})

// RequestDuration tracks HTTP request latency by route pattern.
var RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "finhub",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by route.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
}, []string{"route"})

// Middleware records request count and latency per chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		RequestsTotal.WithLabelValues(route, strconv.Itoa(ww.status)).Inc()
		RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

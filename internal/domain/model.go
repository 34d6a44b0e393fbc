// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import "fmt"

// ─── Account Types ──────────────────────────────────────────────────────────

// Account holds the mutable financial state for one user or public key.
// All mutation goes through the ledger store; nothing else retains an
// independent reference to an Account.
type Account struct {
	ID              string            `json:"id"`
	Balance         float64           `json:"balance"`
	Stake           float64           `json:"stake"`
	ReputationScore int               `json:"reputation"`
	YieldAccrued    float64           `json:"yieldAccrued"`
	LastAccrualTime int64             `json:"lastYieldTime"` // Unix seconds
	History         []ReputationEvent `json:"history"`
}

// ReputationEvent is one append-only audit row in an account's history.
// Delta records the requested change, which may exceed what the clamp
// actually applied.
type ReputationEvent struct {
	Action string `json:"action"`
	Delta  int    `json:"delta"`
	Date   string `json:"date"` // YYYY-MM-DD
}

// Clone returns a deep copy of the account, safe to hand to callers
// outside the store's lock.
func (a *Account) Clone() *Account {
	cp := *a
	cp.History = make([]ReputationEvent, len(a.History))
	copy(cp.History, a.History)
	return &cp
}

// ─── Chit Fund Types ────────────────────────────────────────────────────────

// FundStatus tracks a chit fund through its lifecycle.
type FundStatus string

const (
	FundActive    FundStatus = "active"
	FundCompleted FundStatus = "completed"
)

// FundMember is one participant in a chit fund.
type FundMember struct {
	Account       string  `json:"account"`
	PledgedAmount float64 `json:"pledgedAmount"`
	Contributed   float64 `json:"contributed"`
	HasReceived   bool    `json:"hasReceived"`
	JoinedAt      int64   `json:"joinedAt"`
}

// ChitFund is a rotating savings pool. Members pledge on entry, contribute
// to the pot each cycle, and each member receives the pot exactly once.
type ChitFund struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Creator     string       `json:"creator"`
	Members     []FundMember `json:"members"`
	PotBalance  float64      `json:"potBalance"`
	CycleLength int          `json:"cycleLength"` // days
	Status      FundStatus   `json:"status"`
	CreatedAt   int64        `json:"createdAt"`
}

// HasMember reports whether the account already joined the fund.
func (f *ChitFund) HasMember(account string) bool {
	for _, m := range f.Members {
		if m.Account == account {
			return true
		}
	}
	return false
}

// Member returns the membership record for an account, or nil.
func (f *ChitFund) Member(account string) *FundMember {
	for i := range f.Members {
		if f.Members[i].Account == account {
			return &f.Members[i]
		}
	}
	return nil
}

// ─── Prediction Market Types ────────────────────────────────────────────────

// Resolution states for a prediction market.
const (
	MarketUnresolved = "unresolved"
	MarketResolved   = "resolved"
)

// MarketStake is one account's position on a market outcome.
type MarketStake struct {
	Account string  `json:"account"`
	Outcome string  `json:"outcome"`
	Amount  float64 `json:"amount"`
	Claimed bool    `json:"claimed"`
}

// Market is a multi-outcome prediction market. Stakes accumulate per
// outcome until the creator resolves the market; winners then claim a
// pro-rata share of the full pool.
type Market struct {
	ID         string        `json:"id"`
	Question   string        `json:"question"`
	Creator    string        `json:"creator"`
	Outcomes   []string      `json:"outcomes"`
	Stakes     []MarketStake `json:"stakes"`
	Resolution string        `json:"resolution"` // unresolved | resolved
	Winner     string        `json:"winner,omitempty"`
	CreatedAt  int64         `json:"createdAt"`
}

// HasOutcome reports whether the outcome was declared at creation.
func (m *Market) HasOutcome(outcome string) bool {
	for _, o := range m.Outcomes {
		if o == outcome {
			return true
		}
	}
	return false
}

// TotalPool returns the sum of all stakes on the market.
func (m *Market) TotalPool() float64 {
	var total float64
	for _, s := range m.Stakes {
		total += s.Amount
	}
	return total
}

// OutcomePool returns the sum of stakes backing one outcome.
func (m *Market) OutcomePool(outcome string) float64 {
	var total float64
	for _, s := range m.Stakes {
		if s.Outcome == outcome {
			total += s.Amount
		}
	}
	return total
}

// ─── Arbitrage Types ────────────────────────────────────────────────────────

// Suggestion is one arbitrage opportunity surfaced to the dashboard.
type Suggestion struct {
	ID             string   `json:"id"`
	Description    string   `json:"description"`
	ExpectedProfit float64  `json:"expectedProfit"`
	Confidence     float64  `json:"confidence"`
	Route          []string `json:"route"`
}

// SimulationResult is the outcome of a simulated auto-trade.
type SimulationResult struct {
	Success        bool    `json:"success"`
	SuggestionID   string  `json:"suggestionId"`
	Account        string  `json:"account"`
	ExpectedProfit float64 `json:"expectedProfit"`
	ActualProfit   float64 `json:"actualProfit"`
	Timestamp      string  `json:"timestamp"` // RFC 3339
}

// ─── Utilities ──────────────────────────────────────────────────────────────

// FormatAmount renders a fungible amount with 2 fractional digits.
func FormatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

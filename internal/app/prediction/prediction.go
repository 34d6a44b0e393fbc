// Package prediction implements multi-outcome prediction markets.
//
// Stakes accumulate per outcome until the market is resolved; winners then
// claim stake × totalPool/winningPool, once per staker.
package prediction

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finhub-network/finhub/internal/domain"
)

// Service manages all prediction markets. Thread-safe via RWMutex.
type Service struct {
	mu      sync.RWMutex
	markets map[string]*domain.Market
	order   []string

	// Injectable clock for testing.
	now func() time.Time
}

// NewService creates an empty prediction market service.
func NewService() *Service {
	return &Service{
		markets: make(map[string]*domain.Market),
		now:     time.Now,
	}
}

// ─── Market Lifecycle ───────────────────────────────────────────────────────

// Create opens a market with at least two declared outcomes.
func (s *Service) Create(question, creator string, outcomes []string) (*domain.Market, error) {
	if len(outcomes) < 2 {
		return nil, domain.ErrInvalidOutcome
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	market := &domain.Market{
		ID:         "pm-" + uuid.NewString(),
		Question:   question,
		Creator:    creator,
		Outcomes:   append([]string(nil), outcomes...),
		Stakes:     []domain.MarketStake{},
		Resolution: domain.MarketUnresolved,
		CreatedAt:  s.now().Unix(),
	}
	s.markets[market.ID] = market
	s.order = append(s.order, market.ID)
	return cloneMarket(market), nil
}

// Stake records a position on one of the market's declared outcomes.
// Rejected once the market is resolved.
func (s *Service) Stake(marketID, account, outcome string, amount float64) (*domain.Market, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	market, ok := s.markets[marketID]
	if !ok {
		return nil, domain.ErrMarketNotFound
	}
	if market.Resolution == domain.MarketResolved {
		return nil, domain.ErrMarketResolved
	}
	if !market.HasOutcome(outcome) {
		return nil, domain.ErrInvalidOutcome
	}

	market.Stakes = append(market.Stakes, domain.MarketStake{
		Account: account,
		Outcome: outcome,
		Amount:  amount,
	})
	return cloneMarket(market), nil
}

// Resolve settles the market on one of its declared outcomes. Once only.
func (s *Service) Resolve(marketID, winner string) (*domain.Market, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	market, ok := s.markets[marketID]
	if !ok {
		return nil, domain.ErrMarketNotFound
	}
	if market.Resolution == domain.MarketResolved {
		return nil, domain.ErrMarketResolved
	}
	if !market.HasOutcome(winner) {
		return nil, domain.ErrInvalidOutcome
	}

	market.Resolution = domain.MarketResolved
	market.Winner = winner
	return cloneMarket(market), nil
}

// Claim pays out a winning staker's pro-rata share of the full pool:
// stake × totalPool/winningPool. A losing stake claims successfully for
// zero; claiming with no stake at all is an error, as is re-claiming
// winnings already paid.
func (s *Service) Claim(marketID, account string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	market, ok := s.markets[marketID]
	if !ok {
		return 0, domain.ErrMarketNotFound
	}
	if market.Resolution != domain.MarketResolved {
		return 0, domain.ErrMarketNotResolved
	}

	totalPool := market.TotalPool()
	winningPool := market.OutcomePool(market.Winner)

	var payout float64
	hasStake := false
	won := false
	claimedAlready := false
	for i := range market.Stakes {
		st := &market.Stakes[i]
		if st.Account != account {
			continue
		}
		hasStake = true
		if st.Outcome != market.Winner {
			continue
		}
		won = true
		if st.Claimed {
			claimedAlready = true
			continue
		}
		if winningPool > 0 {
			payout += st.Amount * totalPool / winningPool
		}
		st.Claimed = true
	}

	if !hasStake {
		return 0, domain.ErrNoStake
	}
	if won && claimedAlready && payout == 0 {
		return 0, domain.ErrAlreadyClaimed
	}
	return payout, nil
}

// ─── Queries ────────────────────────────────────────────────────────────────

// Get returns one market by id.
func (s *Service) Get(marketID string) (*domain.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	market, ok := s.markets[marketID]
	if !ok {
		return nil, domain.ErrMarketNotFound
	}
	return cloneMarket(market), nil
}

// List returns all markets in creation order.
func (s *Service) List() []*domain.Market {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Market, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneMarket(s.markets[id]))
	}
	return out
}

// Seed installs a fixture market with a fixed id. Demo mode and tests only.
func (s *Service) Seed(market domain.Market) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := cloneMarket(&market)
	s.markets[cp.ID] = cp
	s.order = append(s.order, cp.ID)
}

func cloneMarket(m *domain.Market) *domain.Market {
	cp := *m
	cp.Outcomes = append([]string(nil), m.Outcomes...)
	cp.Stakes = make([]domain.MarketStake, len(m.Stakes))
	copy(cp.Stakes, m.Stakes)
	return &cp
}

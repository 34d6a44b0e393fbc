// Package arbitrage serves the dashboard's arbitrage suggestion feed and
// simulated auto-trades. Suggestions are a static seeded catalog; a
// simulation applies uniform noise in [0.9, 1.1) to the expected profit.
package arbitrage

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/finhub-network/finhub/internal/domain"
)

// Service holds the suggestion catalog. Thread-safe via RWMutex.
type Service struct {
	mu          sync.RWMutex
	suggestions []domain.Suggestion

	// Injectable randomness and clock for testing.
	rand func() float64
	now  func() time.Time
}

// NewService creates a service with an empty catalog.
func NewService() *Service {
	return &Service{
		rand: rand.Float64,
		now:  time.Now,
	}
}

// DefaultCatalog returns the demo suggestion set.
func DefaultCatalog() []domain.Suggestion {
	return []domain.Suggestion{
		{
			ID:             "arb-1",
			Description:    "Buy XLM on DEX A, sell on DEX B",
			ExpectedProfit: 150.25,
			Confidence:     0.87,
			Route:          []string{"DEX_A", "DEX_B"},
		},
		{
			ID:             "arb-2",
			Description:    "USDC arbitrage via cross-chain bridge",
			ExpectedProfit: 85.40,
			Confidence:     0.75,
			Route:          []string{"Stellar", "Bridge", "Ethereum"},
		},
		{
			ID:             "arb-3",
			Description:    "Exploit price difference on BTC/USDC pair",
			ExpectedProfit: 220.00,
			Confidence:     0.92,
			Route:          []string{"CEX_1", "CEX_2"},
		},
	}
}

// SetCatalog replaces the suggestion catalog.
func (s *Service) SetCatalog(suggestions []domain.Suggestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions = append([]domain.Suggestion(nil), suggestions...)
}

// List returns all current suggestions.
func (s *Service) List() []domain.Suggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Suggestion(nil), s.suggestions...)
}

// Get returns one suggestion by id.
func (s *Service) Get(id string) (domain.Suggestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sug := range s.suggestions {
		if sug.ID == id {
			return sug, nil
		}
	}
	return domain.Suggestion{}, domain.ErrSuggestionNotFound
}

// Simulate runs a mock auto-trade for a suggestion. Actual profit lands
// between 90% and 110% of the expected profit, rounded to 2 digits.
func (s *Service) Simulate(suggestionID, account string) (domain.SimulationResult, error) {
	sug, err := s.Get(suggestionID)
	if err != nil {
		return domain.SimulationResult{}, err
	}

	actual := sug.ExpectedProfit * (0.9 + s.rand()*0.2)
	return domain.SimulationResult{
		Success:        true,
		SuggestionID:   suggestionID,
		Account:        account,
		ExpectedProfit: sug.ExpectedProfit,
		ActualProfit:   math.Round(actual*100) / 100,
		Timestamp:      s.now().UTC().Format(time.RFC3339),
	}, nil
}

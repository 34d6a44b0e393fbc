// Package chitfund implements rotating savings pools.
//
// A fund is created active with its creator as first member and
// accumulates a pot from member pledges and contributions.
// The creator distributes the pot to one member per cycle; members receive
// at most once and the pot resets after each payout.
package chitfund

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finhub-network/finhub/internal/domain"
)

// Service manages all chit funds. Thread-safe via RWMutex.
type Service struct {
	mu    sync.RWMutex
	funds map[string]*domain.ChitFund
	order []string // creation order for stable listing

	// Injectable clock for testing.
	now func() time.Time
}

// NewService creates an empty chit fund service.
func NewService() *Service {
	return &Service{
		funds: make(map[string]*domain.ChitFund),
		now:   time.Now,
	}
}

// ─── Fund Lifecycle ─────────────────────────────────────────────────────────

// Create opens a new fund with the creator as its first member. The
// creator's pledge seeds the pot.
func (s *Service) Create(name, creator string, pledgedAmount float64, cycleLength int) (*domain.ChitFund, error) {
	if pledgedAmount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().Unix()
	fund := &domain.ChitFund{
		ID:      "cf-" + uuid.NewString(),
		Name:    name,
		Creator: creator,
		Members: []domain.FundMember{{
			Account:       creator,
			PledgedAmount: pledgedAmount,
			JoinedAt:      now,
		}},
		PotBalance:  pledgedAmount,
		CycleLength: cycleLength,
		Status:      domain.FundActive,
		CreatedAt:   now,
	}
	s.funds[fund.ID] = fund
	s.order = append(s.order, fund.ID)
	return cloneFund(fund), nil
}

// Join adds a member to an active fund. The pledge joins the pot.
func (s *Service) Join(fundID, account string, pledgedAmount float64) (*domain.ChitFund, error) {
	if pledgedAmount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	fund, ok := s.funds[fundID]
	if !ok {
		return nil, domain.ErrFundNotFound
	}
	if fund.Status == domain.FundCompleted {
		return nil, domain.ErrFundClosed
	}
	if fund.HasMember(account) {
		return nil, domain.ErrAlreadyMember
	}

	fund.Members = append(fund.Members, domain.FundMember{
		Account:       account,
		PledgedAmount: pledgedAmount,
		JoinedAt:      s.now().Unix(),
	})
	fund.PotBalance += pledgedAmount
	return cloneFund(fund), nil
}

// Contribute tops up the pot from an existing member.
func (s *Service) Contribute(fundID, account string, amount float64) (*domain.ChitFund, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	fund, ok := s.funds[fundID]
	if !ok {
		return nil, domain.ErrFundNotFound
	}
	member := fund.Member(account)
	if member == nil {
		return nil, domain.ErrNotMember
	}

	member.Contributed += amount
	fund.PotBalance += amount
	return cloneFund(fund), nil
}

// Distribute pays the current pot to one member. Each member receives at
// most once; the pot resets to zero afterwards. When every member has
// received, the fund completes.
func (s *Service) Distribute(fundID, recipient string) (*domain.ChitFund, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fund, ok := s.funds[fundID]
	if !ok {
		return nil, 0, domain.ErrFundNotFound
	}
	member := fund.Member(recipient)
	if member == nil {
		return nil, 0, domain.ErrNotMember
	}
	if member.HasReceived {
		return nil, 0, domain.ErrAlreadyPaid
	}

	payout := fund.PotBalance
	member.HasReceived = true
	fund.PotBalance = 0

	done := true
	for _, m := range fund.Members {
		if !m.HasReceived {
			done = false
			break
		}
	}
	if done {
		fund.Status = domain.FundCompleted
	}
	return cloneFund(fund), payout, nil
}

// ─── Queries ────────────────────────────────────────────────────────────────

// Get returns one fund by id.
func (s *Service) Get(fundID string) (*domain.ChitFund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fund, ok := s.funds[fundID]
	if !ok {
		return nil, domain.ErrFundNotFound
	}
	return cloneFund(fund), nil
}

// List returns all funds in creation order.
func (s *Service) List() []*domain.ChitFund {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.ChitFund, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneFund(s.funds[id]))
	}
	return out
}

// Seed installs a fixture fund with a fixed id. Demo mode and tests only.
func (s *Service) Seed(fund domain.ChitFund) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := cloneFund(&fund)
	s.funds[cp.ID] = cp
	s.order = append(s.order, cp.ID)
}

func cloneFund(f *domain.ChitFund) *domain.ChitFund {
	cp := *f
	cp.Members = make([]domain.FundMember, len(f.Members))
	copy(cp.Members, f.Members)
	return &cp
}

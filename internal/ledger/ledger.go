// Package ledger implements the bounded reputation ledger with
// time-weighted yield accrual.
//
// Each account carries:
//   - Balance / Stake: fungible funds, stake earns yield
//   - ReputationScore: integer clamped to [ScoreFloor, ScoreCeiling]
//   - History: append-only audit log of every requested reputation delta
//   - YieldAccrued: monotone non-decreasing accrued yield
//
// yield = stake × APY × elapsed/SecondsPerYear (simple, non-compounding)
//
// Every operation is a single atomic read-modify-write over one account,
// guarded by the store mutex so Go's concurrent HTTP handlers cannot
// interleave mutations of the same account.
package ledger

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/finhub-network/finhub/internal/domain"
	"github.com/finhub-network/finhub/internal/infra/observability"
)

// ─── Constants ──────────────────────────────────────────────────────────────

const (
	// ScoreFloor is the minimum reputation score — accounts always keep
	// a recoverable baseline.
	ScoreFloor = 300

	// ScoreCeiling is the absolute maximum reputation score.
	ScoreCeiling = 900

	// DefaultScore for brand new accounts (neutral).
	DefaultScore = 500

	// DefaultAPY is the simulated annual yield rate on staked funds.
	DefaultAPY = 0.09

	// SecondsPerYear with no leap-year adjustment.
	SecondsPerYear = 365 * 24 * 60 * 60

	// yieldPrecision is the display rounding for accrual results.
	// Stored values keep full precision.
	yieldPrecision = 8
)

// ─── Configuration ──────────────────────────────────────────────────────────

// StoreConfig configures the account store. Bounds are read once at
// process start; there is no hot reload.
type StoreConfig struct {
	ScoreFloor   int
	ScoreCeiling int
	DefaultScore int
	APY          float64
}

// DefaultStoreConfig returns the canonical bounds (300–900, default 500)
// and the 9% reference APY.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		ScoreFloor:   ScoreFloor,
		ScoreCeiling: ScoreCeiling,
		DefaultScore: DefaultScore,
		APY:          DefaultAPY,
	}
}

// ─── Store ──────────────────────────────────────────────────────────────────

// Store owns all account records. Thread-safe via RWMutex.
type Store struct {
	mu       sync.RWMutex
	config   StoreConfig
	accounts map[string]*domain.Account
	archiver domain.AccountArchiver // nil = memory-only

	// Injectable clock for testing.
	now func() time.Time
}

// NewStore creates an empty account store.
func NewStore(cfg StoreConfig) *Store {
	return &Store{
		config:   cfg,
		accounts: make(map[string]*domain.Account),
		now:      time.Now,
	}
}

// SetArchiver installs a write-through persistence adapter and restores
// any archived accounts. Must be called before the store is shared.
func (s *Store) SetArchiver(a domain.AccountArchiver) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.archiver = a
	if a == nil {
		return nil
	}
	restored, err := a.LoadAccounts()
	if err != nil {
		return err
	}
	for _, acc := range restored {
		s.accounts[acc.ID] = acc
	}
	return nil
}

// ─── Lookup ─────────────────────────────────────────────────────────────────

// GetOrCreate returns the account, creating it with defaults on first
// reference. Never fails.
func (s *Store) GetOrCreate(id string) *domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(id).Clone()
}

// Get returns the account or domain.ErrAccountNotFound. Used by strict
// endpoints that must surface absence instead of defaulting.
func (s *Store) Get(id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return acc.Clone(), nil
}

// Count returns the number of accounts in the store.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

func (s *Store) getOrCreateLocked(id string) *domain.Account {
	if acc, ok := s.accounts[id]; ok {
		return acc
	}
	acc := &domain.Account{
		ID:              id,
		ReputationScore: s.config.DefaultScore,
		LastAccrualTime: s.now().Unix(),
		History:         []domain.ReputationEvent{},
	}
	s.accounts[id] = acc
	s.archive(acc)
	observability.AccountsCreated.Inc()
	return acc
}

// ─── Reputation ─────────────────────────────────────────────────────────────

// ApplyDelta adds delta to the account's reputation score, saturating at
// the configured bounds, and appends an audit event. The event records the
// REQUESTED delta even when the score saturates, so the history stays a
// faithful log of what was asked for. Creates the account on first
// reference.
func (s *Store) ApplyDelta(id string, delta int, action, date string) *domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.getOrCreateLocked(id)
	acc.ReputationScore = clamp(acc.ReputationScore+delta, s.config.ScoreFloor, s.config.ScoreCeiling)

	ev := domain.ReputationEvent{Action: action, Delta: delta, Date: date}
	acc.History = append(acc.History, ev)

	s.archive(acc)
	s.archiveEvent(acc.ID, ev)
	return acc.Clone()
}

// ─── Yield Accrual ──────────────────────────────────────────────────────────

// AccrualResult reports one accrual computation. YieldSinceLast and
// YieldAccrued are rounded to 8 fractional digits for display; the stored
// cumulative value keeps full precision.
type AccrualResult struct {
	Account        string  `json:"user"`
	YieldSinceLast float64 `json:"yieldSinceLast"`
	YieldAccrued   float64 `json:"yieldAccrued"`
	ElapsedSeconds int64   `json:"elapsedSeconds"`
}

// Accrue computes simple linear-rate yield on the account's stake for the
// time elapsed since the last accrual, adds it to the cumulative total and
// stamps the accrual time. Elapsed time floors at zero, so clock skew can
// never produce negative accrual; a zero stake or zero elapsed time is a
// valid no-op.
func (s *Store) Accrue(id string) (AccrualResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return AccrualResult{}, domain.ErrAccountNotFound
	}

	nowSec := s.now().Unix()
	elapsed := nowSec - acc.LastAccrualTime
	if elapsed < 0 {
		elapsed = 0
	}

	yieldSinceLast := acc.Stake * s.config.APY * (float64(elapsed) / SecondsPerYear)
	acc.YieldAccrued += yieldSinceLast
	acc.LastAccrualTime = nowSec
	s.archive(acc)

	return AccrualResult{
		Account:        id,
		YieldSinceLast: roundTo(yieldSinceLast, yieldPrecision),
		YieldAccrued:   roundTo(acc.YieldAccrued, yieldPrecision),
		ElapsedSeconds: elapsed,
	}, nil
}

// ─── Balance & Stake ────────────────────────────────────────────────────────

// Deposit credits the account's balance. Creates the account on first
// reference.
func (s *Store) Deposit(id string, amount float64) (*domain.Account, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.getOrCreateLocked(id)
	acc.Balance += amount
	s.archive(acc)
	return acc.Clone(), nil
}

// Debit removes amount from the account's balance.
func (s *Store) Debit(id string, amount float64) (*domain.Account, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if acc.Balance < amount {
		return nil, domain.ErrInsufficientBalance
	}
	acc.Balance -= amount
	s.archive(acc)
	return acc.Clone(), nil
}

// StakeFunds moves amount from balance to stake. Staked funds earn yield
// on the next accrual.
func (s *Store) StakeFunds(id string, amount float64) (*domain.Account, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if acc.Balance < amount {
		return nil, domain.ErrInsufficientBalance
	}
	acc.Balance -= amount
	acc.Stake += amount
	s.archive(acc)
	return acc.Clone(), nil
}

// ─── Fixtures ───────────────────────────────────────────────────────────────

// SeedAccount installs a fixture account with a starting balance and
// score. Demo mode and tests only; handlers never substitute identities.
func (s *Store) SeedAccount(id string, balance float64, score int) *domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.getOrCreateLocked(id)
	acc.Balance = balance
	acc.ReputationScore = clamp(score, s.config.ScoreFloor, s.config.ScoreCeiling)
	s.archive(acc)
	return acc.Clone()
}

// archive writes the account through to durable storage. Archive failures
// are logged, not returned: the in-memory state is authoritative and the
// caller's operation already succeeded.
func (s *Store) archive(acc *domain.Account) {
	if s.archiver == nil {
		return
	}
	if err := s.archiver.SaveAccount(acc); err != nil {
		log.Printf("ledger: archive account %s: %v", acc.ID, err)
	}
}

func (s *Store) archiveEvent(id string, ev domain.ReputationEvent) {
	if s.archiver == nil {
		return
	}
	if err := s.archiver.AppendEvent(id, ev); err != nil {
		log.Printf("ledger: archive event for %s: %v", id, err)
	}
}

// ─── Pure Helper Functions ──────────────────────────────────────────────────

// clamp restricts a value to [min, max].
func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// roundTo rounds v to n fractional digits.
func roundTo(v float64, n int) float64 {
	p := math.Pow10(n)
	return math.Round(v*p) / p
}

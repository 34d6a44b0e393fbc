package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Account errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be positive")

	// Chit fund errors
	ErrFundNotFound  = errors.New("fund not found")
	ErrAlreadyMember = errors.New("already a member")
	ErrNotMember     = errors.New("not a member of this fund")
	ErrFundClosed    = errors.New("fund is not accepting new members")
	ErrAlreadyPaid   = errors.New("member has already received payout")

	// Prediction market errors
	ErrMarketNotFound    = errors.New("market not found")
	ErrMarketResolved    = errors.New("market already resolved")
	ErrMarketNotResolved = errors.New("market not resolved yet")
	ErrInvalidOutcome    = errors.New("invalid outcome")
	ErrNoStake           = errors.New("no stake found")
	ErrAlreadyClaimed    = errors.New("winnings already claimed")

	// Arbitrage errors
	ErrSuggestionNotFound = errors.New("suggestion not found")
)

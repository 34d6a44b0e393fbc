package domain

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; the ledger and daemon depend on them.

// AccountArchiver is the persistence substitution point for the in-memory
// account store. The store writes through after every mutation and loads
// the archive once at boot. A nil archiver means memory-only operation,
// which is the default deployment.
type AccountArchiver interface {
	// SaveAccount persists the full current state of one account.
	SaveAccount(a *Account) error

	// AppendEvent persists one reputation audit row for an account.
	AppendEvent(accountID string, ev ReputationEvent) error

	// LoadAccounts returns every archived account with history restored
	// in insertion order.
	LoadAccounts() ([]*Account, error)
}

// Package sqlite is the durable backing store behind the in-memory
// account ledger. The daemon wires it only when [storage] persist is
// enabled; the default deployment is memory-only.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/finhub-network/finhub/internal/domain"
)

// DB wraps the SQLite connection.
type DB struct {
	db *sql.DB
}

// Open creates (or opens) finhub.db inside dir and applies migrations.
func Open(dir string) (*DB, error) {
	path := filepath.Join(dir, "finhub.db")
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Single writer; the ledger store serializes mutations anyway.
	conn.SetMaxOpenConns(1)

	db := &DB{db: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.db.Close()
}

// Migrations returns the schema migration statements.
// Each string is a single SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id            TEXT PRIMARY KEY,
			balance       REAL NOT NULL DEFAULT 0,
			stake         REAL NOT NULL DEFAULT 0,
			reputation    INTEGER NOT NULL DEFAULT 500,
			yield_accrued REAL NOT NULL DEFAULT 0,
			last_accrual  INTEGER NOT NULL DEFAULT 0,
			updated_at    TEXT NOT NULL DEFAULT (datetime('now'))
		)`,

		// Append-only reputation audit log; seq preserves insertion order.
		`CREATE TABLE IF NOT EXISTS reputation_events (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			account_id TEXT NOT NULL,
			action     TEXT NOT NULL,
			delta      INTEGER NOT NULL,
			date       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_account ON reputation_events(account_id, seq)`,

		// Simulation audit (arbitrage auto-trades)
		`CREATE TABLE IF NOT EXISTS simulations (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			suggestion_id   TEXT NOT NULL,
			account_id      TEXT NOT NULL,
			expected_profit REAL NOT NULL,
			actual_profit   REAL NOT NULL,
			created_at      TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
	}
}

func (db *DB) migrate() error {
	for _, stmt := range Migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// ─── Account Operations ─────────────────────────────────────────────────────
// DB implements domain.AccountArchiver.

// SaveAccount upserts the scalar state of one account. History rows are
// written separately via AppendEvent to keep the log append-only.
func (db *DB) SaveAccount(a *domain.Account) error {
	_, err := db.db.Exec(`
		INSERT INTO accounts (id, balance, stake, reputation, yield_accrued, last_accrual, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			balance       = excluded.balance,
			stake         = excluded.stake,
			reputation    = excluded.reputation,
			yield_accrued = excluded.yield_accrued,
			last_accrual  = excluded.last_accrual,
			updated_at    = datetime('now')
	`, a.ID, a.Balance, a.Stake, a.ReputationScore, a.YieldAccrued, a.LastAccrualTime)
	return err
}

// AppendEvent adds one reputation audit row.
func (db *DB) AppendEvent(accountID string, ev domain.ReputationEvent) error {
	_, err := db.db.Exec(`
		INSERT INTO reputation_events (account_id, action, delta, date)
		VALUES (?, ?, ?, ?)
	`, accountID, ev.Action, ev.Delta, ev.Date)
	return err
}

// LoadAccounts restores every account with its history in insertion order.
func (db *DB) LoadAccounts() ([]*domain.Account, error) {
	rows, err := db.db.Query(`
		SELECT id, balance, stake, reputation, yield_accrued, last_accrual
		FROM accounts ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*domain.Account)
	var accounts []*domain.Account
	for rows.Next() {
		acc := &domain.Account{History: []domain.ReputationEvent{}}
		if err := rows.Scan(&acc.ID, &acc.Balance, &acc.Stake, &acc.ReputationScore,
			&acc.YieldAccrued, &acc.LastAccrualTime); err != nil {
			return nil, err
		}
		byID[acc.ID] = acc
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	evRows, err := db.db.Query(`
		SELECT account_id, action, delta, date
		FROM reputation_events ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer evRows.Close()

	for evRows.Next() {
		var id string
		var ev domain.ReputationEvent
		if err := evRows.Scan(&id, &ev.Action, &ev.Delta, &ev.Date); err != nil {
			return nil, err
		}
		if acc, ok := byID[id]; ok {
			acc.History = append(acc.History, ev)
		}
	}
	return accounts, evRows.Err()
}

// ─── Simulation Audit ───────────────────────────────────────────────────────

// RecordSimulation saves one simulated auto-trade result.
func (db *DB) RecordSimulation(res domain.SimulationResult) error {
	_, err := db.db.Exec(`
		INSERT INTO simulations (suggestion_id, account_id, expected_profit, actual_profit)
		VALUES (?, ?, ?, ?)
	`, res.SuggestionID, res.Account, res.ExpectedProfit, res.ActualProfit)
	return err
}

// SimulationCount returns the number of recorded simulations.
func (db *DB) SimulationCount() (int, error) {
	var count int
	err := db.db.QueryRow(`SELECT COUNT(*) FROM simulations`).Scan(&count)
	return count, err
}

// RecentSimulations returns the newest simulation results as JSON-ready rows.
func (db *DB) RecentSimulations(limit int) ([]domain.SimulationResult, error) {
	rows, err := db.db.Query(`
		SELECT suggestion_id, account_id, expected_profit, actual_profit, created_at
		FROM simulations ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SimulationResult
	for rows.Next() {
		res := domain.SimulationResult{Success: true}
		if err := rows.Scan(&res.SuggestionID, &res.Account, &res.ExpectedProfit,
			&res.ActualProfit, &res.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// DumpAccountJSON returns one archived account as JSON, for debugging.
func (db *DB) DumpAccountJSON(id string) ([]byte, error) {
	accounts, err := db.LoadAccounts()
	if err != nil {
		return nil, err
	}
	for _, acc := range accounts {
		if acc.ID == id {
			return json.MarshalIndent(acc, "", "  ")
		}
	}
	return nil, domain.ErrAccountNotFound
}

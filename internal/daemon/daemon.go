package daemon

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finhub-network/finhub/internal/api"
	"github.com/finhub-network/finhub/internal/app/arbitrage"
	"github.com/finhub-network/finhub/internal/app/chitfund"
	"github.com/finhub-network/finhub/internal/app/prediction"
	"github.com/finhub-network/finhub/internal/domain"
	"github.com/finhub-network/finhub/internal/infra/sqlite"
	"github.com/finhub-network/finhub/internal/ledger"
)

// Daemon is the assembled FinHub backend.
type Daemon struct {
	cfg      Config
	accounts *ledger.Store
	server   *api.Server
	db       *sqlite.DB // nil unless persistence is enabled
}

// New builds a daemon from config: ledger store, feature services, the
// optional durable archive, and the HTTP server.
func New(cfg Config) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	accounts := ledger.NewStore(ledger.StoreConfig{
		ScoreFloor:   cfg.Ledger.ScoreFloor,
		ScoreCeiling: cfg.Ledger.ScoreCeiling,
		DefaultScore: cfg.Ledger.DefaultScore,
		APY:          cfg.Yield.APY,
	})

	d := &Daemon{cfg: cfg, accounts: accounts}

	if cfg.Storage.Persist {
		if err := os.MkdirAll(cfg.Storage.DataDir, 0700); err != nil {
			return nil, err
		}
		db, err := sqlite.Open(cfg.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		if err := accounts.SetArchiver(db); err != nil {
			db.Close()
			return nil, err
		}
		d.db = db
	}

	funds := chitfund.NewService()
	markets := prediction.NewService()
	arb := arbitrage.NewService()
	arb.SetCatalog(arbitrage.DefaultCatalog())

	if cfg.Demo.Seed {
		seedDemoData(accounts, funds, markets)
	}

	d.server = api.NewServer(accounts, funds, markets, arb)
	if cfg.API.Metrics {
		d.server.EnableMetrics()
	}
	if d.db != nil {
		d.server.SetSimulationAuditor(d.db)
	}
	return d, nil
}

// Run serves the HTTP API until the context is cancelled or SIGINT /
// SIGTERM arrives, then shuts down gracefully.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:         d.cfg.API.Addr(),
		Handler:      d.server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("finhub listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// seedDemoData installs the demo fixtures the dashboard expects: two
// funded accounts, two chit funds, two prediction markets.
func seedDemoData(accounts *ledger.Store, funds *chitfund.Service, markets *prediction.Service) {
	accounts.SeedAccount("priya", 50000, 500)
	accounts.SeedAccount("rahul", 100000, 610)

	funds.Seed(domain.ChitFund{
		ID:      "cf-1",
		Name:    "Community Savings Pool",
		Creator: "GXXXXEXAMPLECREATOR",
		Members: []domain.FundMember{
			{Account: "GXXXXEXAMPLECREATOR", PledgedAmount: 5000},
			{Account: "GXXXXEXAMPLEMEMBER1", PledgedAmount: 5000},
		},
		PotBalance:  10000,
		CycleLength: 30,
		Status:      domain.FundActive,
	})
	funds.Seed(domain.ChitFund{
		ID:      "cf-2",
		Name:    "Monthly Chit Fund",
		Creator: "GXXXXEXAMPLECREATOR2",
		Members: []domain.FundMember{
			{Account: "GXXXXEXAMPLECREATOR2", PledgedAmount: 10000},
		},
		PotBalance:  10000,
		CycleLength: 30,
		Status:      domain.FundActive,
	})

	markets.Seed(domain.Market{
		ID:       "pm-1",
		Question: "Will BTC surpass $100K by end of 2025?",
		Creator:  "GXXXXEXAMPLE1",
		Outcomes: []string{"Yes", "No"},
		Stakes: []domain.MarketStake{
			{Account: "GXXXXEXAMPLE1", Outcome: "Yes", Amount: 5000},
			{Account: "GXXXXEXAMPLE2", Outcome: "No", Amount: 3000},
		},
		Resolution: domain.MarketUnresolved,
	})
	markets.Seed(domain.Market{
		ID:         "pm-2",
		Question:   "Will ETH reach $5K in Q1 2026?",
		Creator:    "GXXXXEXAMPLE2",
		Outcomes:   []string{"Yes", "No"},
		Stakes:     []domain.MarketStake{},
		Resolution: domain.MarketUnresolved,
	})
}

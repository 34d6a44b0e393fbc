// Package daemon assembles and runs the FinHub backend: config, stores,
// feature services and the HTTP API server.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ─── Configuration ──────────────────────────────────────────────────────────

// Config is the daemon configuration, loaded once at boot from
// ~/.finhub/config.toml. There is no hot reload; clamp bounds and APY are
// fixed for the process lifetime.
type Config struct {
	API     APIConfig     `toml:"api"`
	Ledger  LedgerConfig  `toml:"ledger"`
	Yield   YieldConfig   `toml:"yield"`
	Storage StorageConfig `toml:"storage"`
	Demo    DemoConfig    `toml:"demo"`
}

// APIConfig configures the HTTP listener.
type APIConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Metrics bool   `toml:"metrics"`
}

// LedgerConfig sets the reputation clamp bounds and default score.
type LedgerConfig struct {
	ScoreFloor   int `toml:"score_floor"`
	ScoreCeiling int `toml:"score_ceiling"`
	DefaultScore int `toml:"default_score"`
}

// YieldConfig sets the simulated annual yield rate.
type YieldConfig struct {
	APY float64 `toml:"apy"`
}

// StorageConfig controls the optional durable account archive. Persist
// is off by default: the canonical deployment is memory-only and state
// is lost on restart.
type StorageConfig struct {
	Persist bool   `toml:"persist"`
	DataDir string `toml:"data_dir"`
}

// DemoConfig controls demo fixtures. When Seed is true the daemon
// installs the priya/rahul accounts and sample funds, markets and
// arbitrage suggestions at boot.
type DemoConfig struct {
	Seed bool `toml:"seed"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:    "127.0.0.1",
			Port:    3001,
			Metrics: true,
		},
		Ledger: LedgerConfig{
			ScoreFloor:   300,
			ScoreCeiling: 900,
			DefaultScore: 500,
		},
		Yield: YieldConfig{
			APY: 0.09,
		},
		Storage: StorageConfig{
			Persist: false,
			DataDir: filepath.Join(homeDir(), "data"),
		},
		Demo: DemoConfig{
			Seed: true,
		},
	}
}

// Addr returns the host:port listen address.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate rejects configurations the ledger cannot honor.
func (c Config) Validate() error {
	if c.Ledger.ScoreFloor >= c.Ledger.ScoreCeiling {
		return fmt.Errorf("ledger: score_floor %d must be below score_ceiling %d",
			c.Ledger.ScoreFloor, c.Ledger.ScoreCeiling)
	}
	if c.Ledger.DefaultScore < c.Ledger.ScoreFloor || c.Ledger.DefaultScore > c.Ledger.ScoreCeiling {
		return fmt.Errorf("ledger: default_score %d outside [%d, %d]",
			c.Ledger.DefaultScore, c.Ledger.ScoreFloor, c.Ledger.ScoreCeiling)
	}
	if c.Yield.APY < 0 {
		return fmt.Errorf("yield: apy must be non-negative, got %f", c.Yield.APY)
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api: invalid port %d", c.API.Port)
	}
	return nil
}

// ─── Load / Save ────────────────────────────────────────────────────────────

// LoadConfig reads the config file, falling back to defaults when it does
// not exist. Values present in the file override defaults field by field.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	path := ConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveConfig writes the config to disk, creating the directory if needed.
func SaveConfig(cfg Config) error {
	dir := homeDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	f, err := os.Create(ConfigPath())
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// homeDir returns the FinHub home directory (FINHUB_HOME override).
func homeDir() string {
	if env := os.Getenv("FINHUB_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".finhub")
}

// ConfigPath returns the location of the config file.
func ConfigPath() string {
	return filepath.Join(homeDir(), "config.toml")
}

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/finhub-network/finhub/internal/api"
	"github.com/finhub-network/finhub/internal/daemon"
)

// ─── Root Command ───────────────────────────────────────────────────────────

var rootCmd = &cobra.Command{
	Use:   "finhub",
	Short: "FinHub demo finance backend",
	Long: `FinHub runs a demo finance backend: a bounded reputation ledger with
yield accrual, chit funds, prediction markets, and arbitrage simulation,
served over a JSON HTTP API.`,
	SilenceUsage: true,
}

// Execute runs the root command. It is the entry point for cmd/finhub.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	serveCmd.Flags().String("host", "", "Bind address (overrides config)")
	serveCmd.Flags().Int("port", 0, "Listen port (overrides config)")
	serveCmd.Flags().Bool("persist", false, "Persist accounts to sqlite (overrides config)")
	serveCmd.Flags().Bool("no-seed", false, "Skip demo data seeding")
}

// ─── serve ──────────────────────────────────────────────────────────────────

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the FinHub API daemon",
	Long:  `Start the HTTP API daemon. Configuration is read from ~/.finhub/config.toml, with flags taking precedence.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.API.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.API.Port = port
	}
	if persist, _ := cmd.Flags().GetBool("persist"); persist {
		cfg.Storage.Persist = true
	}
	if noSeed, _ := cmd.Flags().GetBool("no-seed"); noSeed {
		cfg.Demo.Seed = false
	}

	d, err := daemon.New(cfg)
	if err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	return d.Run(context.Background())
}

// ─── version ────────────────────────────────────────────────────────────────

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the FinHub version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "finhub %s\n", api.Version)
	},
}

// ─── config ─────────────────────────────────────────────────────────────────

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage FinHub configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long:  `Write a default config.toml to the FinHub home directory. Fails if one already exists.`,
	RunE:  runConfigInit,
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := daemon.ConfigPath()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}

	cfg := daemon.DefaultConfig()
	if err := daemon.SaveConfig(cfg); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Config written to %s\n", path)
	return nil
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Fprintf(os.Stdout, "API address:    %s\n", cfg.API.Addr())
	fmt.Fprintf(os.Stdout, "Metrics:        %v\n", cfg.API.Metrics)
	fmt.Fprintf(os.Stdout, "Score bounds:   %d..%d (default %d)\n", cfg.Ledger.ScoreFloor, cfg.Ledger.ScoreCeiling, cfg.Ledger.DefaultScore)
	fmt.Fprintf(os.Stdout, "Yield APY:      %.2f%%\n", cfg.Yield.APY*100)
	fmt.Fprintf(os.Stdout, "Persistence:    %v\n", cfg.Storage.Persist)
	fmt.Fprintf(os.Stdout, "Data directory: %s\n", cfg.Storage.DataDir)
	fmt.Fprintf(os.Stdout, "Demo seed:      %v\n", cfg.Demo.Seed)
	return nil
}

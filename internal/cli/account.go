package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/finhub-network/finhub/internal/daemon"
)

// ─── Account Commands ───────────────────────────────────────────────────────
// Thin HTTP clients against a running daemon. The address comes from the
// config file unless --addr overrides it.

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountGetCmd)
	accountCmd.AddCommand(accountReputationCmd)
	accountCmd.AddCommand(accountYieldCmd)

	accountCmd.PersistentFlags().String("addr", "", "Daemon address (host:port, overrides config)")
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Inspect accounts on a running daemon",
}

// ─── account get ────────────────────────────────────────────────────────────

var accountGetCmd = &cobra.Command{
	Use:   "get ACCOUNT_ID",
	Short: "Fetch the full account record",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountGet,
}

func runAccountGet(cmd *cobra.Command, args []string) error {
	return fetchAndPrint(cmd, "/api/user/"+args[0])
}

// ─── account reputation ─────────────────────────────────────────────────────

var accountReputationCmd = &cobra.Command{
	Use:   "reputation ACCOUNT_ID",
	Short: "Fetch an account's reputation score and history",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountReputation,
}

func runAccountReputation(cmd *cobra.Command, args []string) error {
	return fetchAndPrint(cmd, "/api/reputation/"+args[0])
}

// ─── account yield ──────────────────────────────────────────────────────────

var accountYieldCmd = &cobra.Command{
	Use:   "yield ACCOUNT_ID",
	Short: "Accrue and report yield for an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountYield,
}

func runAccountYield(cmd *cobra.Command, args []string) error {
	return fetchAndPrint(cmd, "/api/yield/"+args[0])
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// daemonAddr resolves the daemon address from the --addr flag, falling
// back to the config file.
func daemonAddr(cmd *cobra.Command) (string, error) {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		return addr, nil
	}
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	return cfg.API.Addr(), nil
}

func fetchAndPrint(cmd *cobra.Command, path string) error {
	addr, err := daemonAddr(cmd)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get("http://" + addr + path)
	if err != nil {
		return fmt.Errorf("is the daemon running at %s? %w", addr, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		pretty.Write(body)
	}
	fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
	return nil
}

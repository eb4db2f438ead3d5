package main

import (
	"errors"
	"fmt"

	"github.com/kastheco/arbor/config"
	"github.com/kastheco/arbor/internal/check"
	"github.com/kastheco/arbor/internal/llm"
	"github.com/spf13/cobra"
)

// errUnhealthy is returned when health < 100% to signal exit code 1 without printing a message.
var errUnhealthy = errors.New("unhealthy")

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that config, storage and the model are usable",
		Long: `Runs a check for each dependency and reports the result:

  config, chat template   the config loads and validates
  session store, audit    the SQLite databases open
  export dir              snapshots can be written
  model                   (with --model) a test request parses into candidates

Exit code 0 if every check that ran passed, exit code 1 otherwise.`,
		RunE: runCheck,
		// Health failures are not usage errors.
		SilenceUsage: true,
		// Suppress cobra's "Error: ..." line for the unhealthy sentinel.
		SilenceErrors: true,
	}
	cmd.Flags().Bool("model", false, "send a test request to the configured model")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	withModel, _ := cmd.Flags().GetBool("model")

	cfg := config.LoadConfig()

	var model llm.Completer
	if withModel {
		m, err := llm.New(cfg.LLMOptions())
		if err != nil {
			return fmt.Errorf("create model client: %w", err)
		}
		model = m
	}

	report := check.Audit(cmd.Context(), cfg, model)
	renderReport(cmd, report)

	ok, total := report.Summary()
	pct := 0
	if total > 0 {
		pct = ok * 100 / total
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nHealth: %d/%d OK (%d%%)\n", ok, total, pct)

	if pct < 100 {
		return errUnhealthy
	}
	return nil
}

func renderReport(cmd *cobra.Command, report check.Report) {
	out := cmd.OutOrStdout()
	for _, r := range report.Results {
		fmt.Fprintf(out, "  %s %-14s %s\n", statusGlyph(r.Status), r.Name, r.Detail)
	}
}

func statusGlyph(s check.Status) string {
	switch s {
	case check.StatusOK:
		return "✓"
	case check.StatusSkipped:
		return "⊘"
	case check.StatusFailed:
		return "✗"
	default:
		return "?"
	}
}

func init() {
	rootCmd.AddCommand(newCheckCmd())
}

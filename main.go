package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/kastheco/arbor/app"
	cmd2 "github.com/kastheco/arbor/cmd"
	"github.com/kastheco/arbor/config"
	"github.com/kastheco/arbor/config/auditlog"
	"github.com/kastheco/arbor/config/planstore"
	"github.com/kastheco/arbor/internal/llm"
	sentrypkg "github.com/kastheco/arbor/internal/sentry"
	"github.com/kastheco/arbor/log"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	rootCmd = &cobra.Command{
		Use:   "arbor [goal]",
		Short: "arbor - plan toward a goal one step at a time, with an LLM proposing the next steps.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := config.LoadConfig()
			sentrypkg.SetDSN(cfg.SentryDSN)
			if err := sentrypkg.Init(version, cfg.IsTelemetryEnabled()); err != nil {
				// Non-fatal: sentry failure should not prevent startup
				_ = err
			}
			log.Initialize(cfg.IsTelemetryEnabled())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Close()
			sentrypkg.Flush()
		},
		RunE: runPlan,
	}

	planCmd = &cobra.Command{
		Use:   "plan [goal]",
		Short: "Start an interactive planning session",
		RunE:  runPlan,
	}

	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "Print debug information like config paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()

			configDir, err := config.GetConfigDir()
			if err != nil {
				return fmt.Errorf("failed to get config directory: %w", err)
			}
			configJson, _ := json.MarshalIndent(cfg.Masked(), "", "  ")

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config: %s\n%s\n", filepath.Join(configDir, config.ConfigFileName), configJson)
			fmt.Fprintf(out, "TOML overlay: %s\n", filepath.Join(configDir, config.TOMLFileName))
			fmt.Fprintf(out, "Log: %s\n", log.LogFilePath())
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(out, "Invalid: %v\n", err)
			}
			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of arbor",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "arbor version %s\n", version)
		},
	}
)

func runPlan(cmd *cobra.Command, args []string) error {
	defer sentrypkg.RecoverPanic()

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := app.RequireTerminal(os.Stdin); err != nil {
		return err
	}

	model, err := llm.New(cfg.LLMOptions())
	if err != nil {
		return fmt.Errorf("create model client: %w", err)
	}

	store, err := planstore.NewStoreFromConfig(cfg.StorePath)
	if err != nil {
		// Sessions still export to files without a store.
		log.WarningLog.Printf("session store disabled: %v", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	audit, err := auditlog.Open(cfg.AuditPath)
	if err != nil {
		log.WarningLog.Printf("audit log disabled: %v", err)
		audit = auditlog.NopLogger()
	}
	defer audit.Close()

	s, err := app.Run(cmd.Context(), strings.Join(args, " "), app.Options{
		Config:   cfg,
		Model:    model,
		Prompter: app.HuhPrompter{},
		Store:    store,
		Audit:    audit,
		Out:      cmd.OutOrStdout(),
	})
	if s != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "session %s\n", s.ID())
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func init() {
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(cmd2.NewGenerateCmd())
	rootCmd.AddCommand(cmd2.NewSessionsCmd())
	rootCmd.AddCommand(cmd2.NewPromptgenCmd())
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errUnhealthy) {
			os.Exit(1)
		}
		fmt.Println(err)
		os.Exit(1)
	}
}

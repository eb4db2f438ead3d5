// Package cmd holds the non-interactive subcommands. Each command is a thin
// cobra wrapper around an execute* helper that tests call directly.
package cmd

import (
	"fmt"

	"github.com/kastheco/arbor/config"
	"github.com/kastheco/arbor/config/auditlog"
	"github.com/kastheco/arbor/config/planstore"
	"github.com/kastheco/arbor/internal/llm"
	"github.com/kastheco/arbor/log"
)

// loadConfig returns the validated config.
func loadConfig() (*config.Config, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newModel builds the model client the config describes.
func newModel(cfg *config.Config) (llm.Completer, error) {
	model, err := llm.New(cfg.LLMOptions())
	if err != nil {
		return nil, fmt.Errorf("create model client: %w", err)
	}
	return model, nil
}

// openStore opens the session store, failing when none is configured.
func openStore(cfg *config.Config) (planstore.Store, error) {
	store, err := planstore.NewStoreFromConfig(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	if store == nil {
		return nil, fmt.Errorf("no session store configured (set store_path)")
	}
	return store, nil
}

// openAudit opens the audit log; failures degrade to a no-op logger.
func openAudit(cfg *config.Config) auditlog.Logger {
	audit, err := auditlog.Open(cfg.AuditPath)
	if err != nil {
		log.WarningLog.Printf("audit log disabled: %v", err)
		return auditlog.NopLogger()
	}
	return audit
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kastheco/arbor/config"
	"github.com/kastheco/arbor/config/auditlog"
	"github.com/kastheco/arbor/config/planstore"
	"github.com/kastheco/arbor/internal/llm"
	"github.com/kastheco/arbor/internal/prompt"
	"github.com/kastheco/arbor/session"
	"github.com/spf13/cobra"
)

// generateParams collects what a one-shot generation needs.
type generateParams struct {
	goal   string
	count  int
	cfg    *config.Config
	model  llm.Completer
	audit  auditlog.Logger
	store  planstore.Store // nil unless --save
	errOut io.Writer
}

// executeGenerate asks the model for next steps toward goal from the root and
// returns them one per line as "index: content". A short result is reported
// on errOut.
func executeGenerate(ctx context.Context, p generateParams) (string, error) {
	formatter, err := prompt.NewFormatter(p.cfg.ChatTemplate)
	if err != nil {
		return "", err
	}
	opts := []session.Option{
		session.WithFormatter(formatter),
		session.WithSystemPrompt(p.cfg.SystemPromptOrDefault()),
		session.WithMaxAttempts(p.cfg.MaxAttempts),
	}
	if p.audit != nil {
		opts = append(opts, session.WithAuditLogger(p.audit))
	}
	s := session.New(p.goal, p.model, opts...)

	count := p.count
	if count <= 0 {
		count = p.cfg.Candidates
	}
	added, err := s.GeneratePlans(ctx, count)
	if err != nil {
		return "", err
	}
	if len(added) < count && p.errOut != nil {
		fmt.Fprintf(p.errOut, "warning: the model returned %d of %d plans\n", len(added), count)
	}

	if p.store != nil {
		if err := s.SaveTo(p.store); err != nil {
			return "", err
		}
	}

	var sb strings.Builder
	for _, c := range added {
		sb.WriteString(fmt.Sprintf("%d: %s\n", c.Index, c.Content))
	}
	return sb.String(), nil
}

// NewGenerateCmd builds `arbor generate`.
func NewGenerateCmd() *cobra.Command {
	var (
		countFlag int
		saveFlag  bool
	)
	generateCmd := &cobra.Command{
		Use:   "generate <goal>",
		Short: "Print candidate first steps for a goal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			model, err := newModel(cfg)
			if err != nil {
				return err
			}
			audit := openAudit(cfg)
			defer audit.Close()

			p := generateParams{
				goal:   strings.Join(args, " "),
				count:  countFlag,
				cfg:    cfg,
				model:  model,
				audit:  audit,
				errOut: cmd.ErrOrStderr(),
			}
			if saveFlag {
				store, err := openStore(cfg)
				if err != nil {
					return err
				}
				defer store.Close()
				p.store = store
			}

			out, err := executeGenerate(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	generateCmd.Flags().IntVarP(&countFlag, "count", "n", 0, "number of candidates (default: config candidates)")
	generateCmd.Flags().BoolVar(&saveFlag, "save", false, "save the result to the session store")
	return generateCmd
}

package cmd

import (
	"context"
	"fmt"

	"github.com/kastheco/arbor/internal/llm"
	"github.com/kastheco/arbor/internal/promptgen"
	"github.com/spf13/cobra"
)

// executePromptgen expands base with one generated section per phase.
func executePromptgen(ctx context.Context, model llm.Completer, base string, phases []string) (string, error) {
	if len(phases) == 0 {
		return "", fmt.Errorf("at least one --phase is required")
	}
	g := &promptgen.Generator{Base: base, Phases: phases, Model: model}
	prompts, err := g.Generate(ctx)
	if err != nil {
		return "", err
	}
	return promptgen.Combine(base, prompts), nil
}

// NewPromptgenCmd builds `arbor promptgen`.
func NewPromptgenCmd() *cobra.Command {
	var phaseFlags []string
	promptgenCmd := &cobra.Command{
		Use:   "promptgen <base prompt>",
		Short: "Expand a base prompt with one generated section per phase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			model, err := newModel(cfg)
			if err != nil {
				return err
			}
			out, err := executePromptgen(cmd.Context(), model, args[0], phaseFlags)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	promptgenCmd.Flags().StringArrayVar(&phaseFlags, "phase", nil, "phase to generate a section for (repeatable)")
	return promptgenCmd
}

// Package promptgen expands a short base prompt into a longer one, asking
// the model for one section per phase.
package promptgen

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kastheco/arbor/internal/llm"
	"github.com/kastheco/arbor/log"
)

// PhasePrompt is the generated section for one phase.
type PhasePrompt struct {
	Phase  string
	Prompt string
}

// Generator builds phase prompts from a base prompt.
type Generator struct {
	Base   string
	Phases []string
	Model  llm.Completer
}

// PhaseRequest is the text sent to the model for phase.
func PhaseRequest(base, phase string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Given the base prompt: %q\n", base))
	sb.WriteString(fmt.Sprintf("Generate a detailed prompt for the %q phase of a roleplay character.\n", phase))
	sb.WriteString(fmt.Sprintf("The generated prompt should expand on the base prompt and provide specific details related to the %s aspect of the character.", phase))
	return sb.String()
}

// phases returns the configured phases trimmed, without blanks or repeats.
func (g *Generator) phases() []string {
	seen := make(map[string]bool, len(g.Phases))
	var out []string
	for _, p := range g.Phases {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// Generate asks the model for each phase in order. It stops at the first
// failure and returns the sections generated so far.
func (g *Generator) Generate(ctx context.Context) ([]PhasePrompt, error) {
	var out []PhasePrompt
	for _, phase := range g.phases() {
		text, err := g.Model.Complete(ctx, PhaseRequest(g.Base, phase))
		if err != nil {
			return out, fmt.Errorf("generate %q phase: %w", phase, err)
		}
		log.InfoLog.Printf("promptgen: generated %q phase (%d bytes)", phase, len(text))
		out = append(out, PhasePrompt{Phase: phase, Prompt: strings.TrimSpace(text)})
	}
	return out, nil
}

// Combine joins the base prompt and the sections under capitalised phase
// headings.
func Combine(base string, prompts []PhasePrompt) string {
	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString("\n\n")
	for _, p := range prompts {
		sb.WriteString(capitalize(p.Phase))
		sb.WriteString(":\n")
		sb.WriteString(p.Prompt)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

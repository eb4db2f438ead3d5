package prompt

import (
	"fmt"
	"strings"
)

// Formatter renders a system prompt and message history into the single
// prompt string a completion backend receives. The output ends where the
// assistant's reply should begin.
type Formatter interface {
	Format(system string, history []Message) string
}

// Template names accepted by NewFormatter.
const (
	TemplateLlama3 = "llama3"
	TemplatePlain  = "plain"
)

// NewFormatter returns the formatter for a template name. An empty name
// selects llama3.
func NewFormatter(name string) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", TemplateLlama3:
		return Llama3{}, nil
	case TemplatePlain:
		return Plain{}, nil
	}
	return nil, fmt.Errorf("unknown chat template %q (want %s or %s)", name, TemplateLlama3, TemplatePlain)
}

// Llama3 renders the Llama 3 instruct header format.
type Llama3 struct{}

func (Llama3) Format(system string, history []Message) string {
	var sb strings.Builder
	sb.WriteString("<|begin_of_text|>")
	writeTurn := func(role Role, content string) {
		sb.WriteString("<|start_header_id|>")
		sb.WriteString(string(role))
		sb.WriteString("<|end_header_id|>\n\n")
		sb.WriteString(strings.TrimSpace(content))
		sb.WriteString("<|eot_id|>")
	}
	if system != "" {
		writeTurn(RoleSystem, system)
	}
	for _, m := range history {
		writeTurn(m.Role, m.Content)
	}
	sb.WriteString("<|start_header_id|>assistant<|end_header_id|>\n\n")
	return sb.String()
}

// StopSequence is the Llama 3 end-of-turn token; completions should stop on it.
const StopSequence = "<|eot_id|>"

// Plain renders "Role: content" blocks, for chat backends that take a single
// user message.
type Plain struct{}

func (Plain) Format(system string, history []Message) string {
	var sb strings.Builder
	if system != "" {
		sb.WriteString("System: ")
		sb.WriteString(strings.TrimSpace(system))
		sb.WriteString("\n\n")
	}
	for _, m := range history {
		sb.WriteString(roleLabel(m.Role))
		sb.WriteString(": ")
		sb.WriteString(strings.TrimSpace(m.Content))
		sb.WriteString("\n\n")
	}
	sb.WriteString("Assistant:")
	return sb.String()
}

func roleLabel(r Role) string {
	switch r {
	case RoleSystem:
		return "System"
	case RoleAssistant:
		return "Assistant"
	default:
		return "User"
	}
}

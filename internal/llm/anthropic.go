package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/kastheco/arbor/log"
)

const defaultAnthropicMaxTokens = 1000

// Anthropic sends the prompt as a single user message to the Messages API.
type Anthropic struct {
	client anthropic.Client
	opts   Options
}

// NewAnthropic builds a Messages API client.
func NewAnthropic(opts Options) *Anthropic {
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	return &Anthropic{client: anthropic.NewClient(reqOpts...), opts: opts}
}

func (a *Anthropic) params(prompt string) anthropic.MessageNewParams {
	maxTokens := int64(a.opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	p := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.opts.Model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(a.opts.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if len(a.opts.Stop) > 0 {
		p.StopSequences = a.opts.Stop
	}
	return p
}

// Complete returns the concatenated text blocks of the reply.
func (a *Anthropic) Complete(ctx context.Context, prompt string) (string, error) {
	log.InfoLog.Printf("anthropic message: model=%s prompt_chars=%d", a.opts.Model, len(prompt))
	msg, err := a.client.Messages.New(ctx, a.params(prompt))
	if err != nil {
		return "", fmt.Errorf("anthropic message: %w", err)
	}
	return messageText(msg), nil
}

func messageText(msg *anthropic.Message) string {
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

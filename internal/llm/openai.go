package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/kastheco/arbor/log"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAI talks to an OpenAI-compatible text completions endpoint, such as a
// vLLM server hosting a fine-tuned checkpoint.
type OpenAI struct {
	client *openai.Client
	opts   Options
}

// NewOpenAI builds a client for opts.BaseURL. An empty API key is sent as
// "EMPTY", which self-hosted servers accept.
func NewOpenAI(opts Options) *OpenAI {
	key := opts.APIKey
	if key == "" {
		key = "EMPTY"
	}
	cfg := openai.DefaultConfig(key)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), opts: opts}
}

func (o *OpenAI) request(prompt string) openai.CompletionRequest {
	return openai.CompletionRequest{
		Model:       o.opts.Model,
		Prompt:      prompt,
		MaxTokens:   o.opts.MaxTokens,
		Temperature: wireTemperature(o.opts.Temperature),
		Stop:        o.opts.Stop,
	}
}

// wireTemperature maps t onto the request field. The field is omitempty, so a
// literal zero would be dropped and the server would fall back to its own
// default; greedy decoding is sent as the smallest positive float32 instead.
func wireTemperature(t float64) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

// Complete sends prompt and returns the generated text with a trailing newline.
func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	log.InfoLog.Printf("openai completion: model=%s stream=%t prompt_chars=%d", o.opts.Model, o.opts.Stream, len(prompt))
	if !o.opts.Stream {
		resp, err := o.client.CreateCompletion(ctx, o.request(prompt))
		if err != nil {
			return "", fmt.Errorf("openai completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("openai completion: empty response")
		}
		return resp.Choices[0].Text + "\n", nil
	}

	stream, err := o.client.CreateCompletionStream(ctx, o.request(prompt))
	if err != nil {
		return "", fmt.Errorf("openai completion stream: %w", err)
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("openai completion stream: %w", err)
		}
		if len(chunk.Choices) > 0 {
			sb.WriteString(chunk.Choices[0].Text)
		}
	}
	sb.WriteString("\n")
	return sb.String(), nil
}

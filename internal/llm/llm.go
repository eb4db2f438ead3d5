// Package llm is the boundary to the language model. Everything the planner
// needs is Complete: one prompt in, one fully buffered response out.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Completer performs a single synchronous model round-trip.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Backend names accepted by New.
const (
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
	BackendStatic    = "static"
)

// Options configures a backend. Fields a backend does not use are ignored.
type Options struct {
	Backend     string
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Stop        []string
	// Stream requests a streamed completion; the chunks are still joined
	// before Complete returns.
	Stream bool
	// Responses are returned in order by the static backend.
	Responses []string
	Timeout   time.Duration
}

// New builds the Completer for opts.Backend, wrapped with opts.Timeout.
func New(opts Options) (Completer, error) {
	var c Completer
	switch strings.ToLower(opts.Backend) {
	case "", BackendOpenAI:
		c = NewOpenAI(opts)
	case BackendAnthropic:
		if opts.APIKey == "" {
			return nil, fmt.Errorf("anthropic backend requires an api key")
		}
		c = NewAnthropic(opts)
	case BackendStatic:
		c = NewStatic(opts.Responses...)
	default:
		return nil, fmt.Errorf("unknown model backend %q", opts.Backend)
	}
	return WithTimeout(c, opts.Timeout), nil
}

// WithTimeout bounds every Complete call by d. A zero d returns c unchanged.
func WithTimeout(c Completer, d time.Duration) Completer {
	if d <= 0 {
		return c
	}
	return CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return c.Complete(ctx, prompt)
	})
}

package llm

import (
	"context"
	"sync"
)

// Static returns canned responses in order, repeating the last one once the
// list is exhausted. It records every prompt it receives.
type Static struct {
	mu        sync.Mutex
	responses []string
	next      int
	prompts   []string
}

// NewStatic returns a Static completer over responses.
func NewStatic(responses ...string) *Static {
	return &Static{responses: responses}
}

func (s *Static) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if len(s.responses) == 0 {
		return "", nil
	}
	i := s.next
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	} else {
		s.next++
	}
	return s.responses[i], nil
}

// Prompts returns a copy of the prompts received so far.
func (s *Static) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

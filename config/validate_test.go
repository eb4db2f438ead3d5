package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	isolate(t)

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.Backend = "ollama" }, wantErr: "backend must be one of"},
		{name: "missing model", mutate: func(c *Config) { c.Model = "" }, wantErr: "model is required"},
		{name: "zero candidates", mutate: func(c *Config) { c.Candidates = 0 }, wantErr: "candidates must be at least 1"},
		{name: "hot temperature", mutate: func(c *Config) { c.Temperature = 3 }, wantErr: "temperature must be at most 2"},
		{name: "bad template", mutate: func(c *Config) { c.ChatTemplate = "chatml" }, wantErr: "chat_template must be one of"},
		{name: "bad url", mutate: func(c *Config) { c.BaseURL = "not a url" }, wantErr: "base_url must be a valid URL"},
		{name: "anthropic with llama3", mutate: func(c *Config) { c.Backend = "anthropic" }, wantErr: "chat_template llama3 cannot be used with the anthropic backend"},
		{name: "anthropic with plain", mutate: func(c *Config) { c.Backend = "anthropic"; c.ChatTemplate = "plain" }},
		{name: "narrow columns", mutate: func(c *Config) { c.ColumnWidth = 2 }, wantErr: "column_width must be at least 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	isolate(t)
	cfg := DefaultConfig()
	cfg.Candidates = 0
	cfg.MaxAttempts = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "candidates")
	assert.Contains(t, err.Error(), "max_attempts")
}

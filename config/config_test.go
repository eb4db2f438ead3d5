package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kastheco/arbor/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain runs before all tests to set up the test environment
func TestMain(m *testing.M) {
	log.Initialize(false)
	code := m.Run()
	log.Close()
	os.Exit(code)
}

var envVars = []string{
	EnvBackend, EnvBaseURL, EnvModel, EnvAPIKey, EnvMaxTokens, EnvTemperature,
	EnvStorePath, EnvAuditPath, EnvTelemetry, EnvSentryDSN, EnvOpenAIKey, EnvAnthropicKey,
}

// isolate points HOME at a temp dir and clears every variable the loader reads.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range envVars {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Chdir(t.TempDir())
	return filepath.Join(home, ".config", "arbor")
}

func TestGetConfigDir(t *testing.T) {
	dir := isolate(t)
	got, err := GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}

func TestDefaultConfig(t *testing.T) {
	dir := isolate(t)
	cfg := DefaultConfig()

	assert.Equal(t, "openai", cfg.Backend)
	assert.Equal(t, 3, cfg.Candidates)
	assert.Equal(t, 2, cfg.MaxAttempts)
	assert.Equal(t, 3, cfg.Columns)
	assert.Equal(t, 40, cfg.ColumnWidth)
	assert.Equal(t, "llama3", cfg.ChatTemplate)
	assert.Equal(t, []string{"<|eot_id|>"}, cfg.Stop)
	assert.Equal(t, filepath.Join(dir, "sessions.db"), cfg.StorePath)
	assert.Equal(t, filepath.Join(dir, "audit.db"), cfg.AuditPath)
	assert.True(t, cfg.IsTelemetryEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Run("creates default config when missing", func(t *testing.T) {
		dir := isolate(t)

		cfg := LoadConfig()
		assert.Equal(t, DefaultConfig(), cfg)

		data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
		require.NoError(t, err)
		var saved Config
		require.NoError(t, json.Unmarshal(data, &saved))
		assert.Equal(t, cfg.Model, saved.Model)
	})

	t.Run("keeps defaults for fields missing from file", func(t *testing.T) {
		dir := isolate(t)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName),
			[]byte(`{"model": "my-model", "candidates": 5}`), 0o644))

		cfg := LoadConfig()
		assert.Equal(t, "my-model", cfg.Model)
		assert.Equal(t, 5, cfg.Candidates)
		assert.Equal(t, 2, cfg.MaxAttempts)
		assert.Equal(t, 40, cfg.ColumnWidth)
	})

	t.Run("falls back to defaults on invalid JSON", func(t *testing.T) {
		dir := isolate(t)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(`{nope`), 0o644))

		assert.Equal(t, DefaultConfig(), LoadConfig())
	})

	t.Run("TOML overrides JSON and env overrides TOML", func(t *testing.T) {
		dir := isolate(t)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName),
			[]byte(`{"model": "json-model", "max_tokens": 100}`), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, TOMLFileName),
			[]byte("[model]\nname = \"toml-model\"\nmax_tokens = 200\n"), 0o644))
		t.Setenv(EnvMaxTokens, "300")

		cfg := LoadConfig()
		assert.Equal(t, "toml-model", cfg.Model)
		assert.Equal(t, 300, cfg.MaxTokens)
	})

	t.Run("reads .env from the config directory", func(t *testing.T) {
		dir := isolate(t)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
			[]byte("ARBOR_MODEL=dotenv-model\n"), 0o644))
		t.Cleanup(func() { os.Unsetenv(EnvModel) })

		cfg := LoadConfig()
		assert.Equal(t, "dotenv-model", cfg.Model)
	})

	t.Run("anthropic backend drops the llama3 template and stop token", func(t *testing.T) {
		isolate(t)
		t.Setenv(EnvBackend, "anthropic")

		cfg := LoadConfig()
		assert.Equal(t, "anthropic", cfg.Backend)
		assert.Equal(t, "plain", cfg.ChatTemplate)
		assert.Empty(t, cfg.Stop)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("anthropic backend keeps other stop sequences", func(t *testing.T) {
		dir := isolate(t)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, TOMLFileName),
			[]byte("[model]\nbackend = \"anthropic\"\nstop = [\"<|eot_id|>\", \"END\"]\n"), 0o644))

		cfg := LoadConfig()
		assert.Equal(t, "plain", cfg.ChatTemplate)
		assert.Equal(t, []string{"END"}, cfg.Stop)
	})
}

func TestApplyBackendDefaults_OpenAIUntouched(t *testing.T) {
	isolate(t)
	cfg := DefaultConfig()
	cfg.applyBackendDefaults()
	assert.Equal(t, "llama3", cfg.ChatTemplate)
	assert.Equal(t, []string{"<|eot_id|>"}, cfg.Stop)
}

func TestConfigHelpers(t *testing.T) {
	isolate(t)
	cfg := DefaultConfig()
	cfg.APIKey = "sk-1234567890"
	cfg.SentryDSN = "short"
	cfg.RequestTimeoutSeconds = 30

	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())

	masked := cfg.Masked()
	assert.Equal(t, "sk-1****", masked.APIKey)
	assert.Equal(t, "****", masked.SentryDSN)
	assert.Equal(t, "sk-1234567890", cfg.APIKey, "original is untouched")

	opts := cfg.LLMOptions()
	assert.Equal(t, cfg.Model, opts.Model)
	assert.Equal(t, cfg.APIKey, opts.APIKey)
	assert.Equal(t, 30*time.Second, opts.Timeout)
	assert.True(t, opts.Stream)

	assert.NotEmpty(t, cfg.SystemPromptOrDefault())
	cfg.SystemPrompt = "custom"
	assert.Equal(t, "custom", cfg.SystemPromptOrDefault())

	off := false
	cfg.TelemetryEnabled = &off
	assert.False(t, cfg.IsTelemetryEnabled())
}

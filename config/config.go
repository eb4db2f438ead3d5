package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/kastheco/arbor/internal/llm"
	"github.com/kastheco/arbor/internal/prompt"
	"github.com/kastheco/arbor/log"
)

const (
	ConfigFileName = "config.json"
	TOMLFileName   = "config.toml"

	defaultBaseURL = "http://localhost:8000/v1"
	defaultModel   = "meta-llama/Meta-Llama-3-8B-Instruct"
)

// GetConfigDir returns the path to the application's configuration directory,
// ~/.config/arbor.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "arbor"), nil
}

// Config represents the application configuration
type Config struct {
	// Backend selects the model client: openai (any OpenAI-compatible server,
	// including vLLM), anthropic or static.
	Backend string `json:"backend" validate:"omitempty,oneof=openai anthropic static"`
	// BaseURL is the API root of an OpenAI-compatible server.
	BaseURL string `json:"base_url,omitempty" validate:"omitempty,url"`
	Model   string `json:"model" validate:"required"`
	// APIKey is usually supplied through the environment rather than saved.
	APIKey      string   `json:"api_key,omitempty"`
	MaxTokens   int      `json:"max_tokens" validate:"gte=1"`
	Temperature float64  `json:"temperature" validate:"gte=0,lte=2"`
	Stop        []string `json:"stop,omitempty"`
	// Stream requests a streamed completion; the text is still returned whole.
	Stream       bool   `json:"stream"`
	SystemPrompt string `json:"system_prompt,omitempty"`
	ChatTemplate string `json:"chat_template" validate:"omitempty,oneof=llama3 plain"`
	// Candidates is how many next steps a generation round asks for.
	Candidates  int `json:"candidates" validate:"gte=1,lte=20"`
	MaxAttempts int `json:"max_attempts" validate:"gte=1,lte=10"`
	// RequestTimeoutSeconds bounds one model round-trip. Zero means no limit.
	RequestTimeoutSeconds int `json:"request_timeout_seconds" validate:"gte=0"`
	// StorePath is the SQLite database holding saved sessions. Empty disables it.
	StorePath string `json:"store_path,omitempty"`
	// AuditPath is the SQLite database for the audit log. Empty disables it.
	AuditPath string `json:"audit_path,omitempty"`
	// ExportPath overrides .plan_info/aplan.json in the working directory.
	ExportPath string `json:"export_path,omitempty"`
	// TelemetryEnabled controls whether crash reporting via Sentry is active.
	// Defaults to true when not set.
	TelemetryEnabled *bool  `json:"telemetry_enabled,omitempty"`
	SentryDSN        string `json:"sentry_dsn,omitempty"`
	Columns          int    `json:"columns" validate:"gte=1,lte=6"`
	ColumnWidth      int    `json:"column_width" validate:"gte=10,lte=200"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	cfg := &Config{
		Backend:               llm.BackendOpenAI,
		BaseURL:               defaultBaseURL,
		Model:                 defaultModel,
		MaxTokens:             512,
		Temperature:           0,
		Stop:                  []string{prompt.StopSequence},
		Stream:                true,
		ChatTemplate:          prompt.TemplateLlama3,
		Candidates:            3,
		MaxAttempts:           2,
		RequestTimeoutSeconds: 120,
		Columns:               3,
		ColumnWidth:           40,
	}
	if dir, err := GetConfigDir(); err == nil {
		cfg.StorePath = filepath.Join(dir, "sessions.db")
		cfg.AuditPath = filepath.Join(dir, "audit.db")
	}
	return cfg
}

// IsTelemetryEnabled returns whether Sentry telemetry is enabled.
// Defaults to true when the field is not set.
func (c *Config) IsTelemetryEnabled() bool {
	if c.TelemetryEnabled == nil {
		return true
	}
	return *c.TelemetryEnabled
}

// RequestTimeout returns RequestTimeoutSeconds as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// SystemPromptOrDefault returns the configured system prompt, falling back to
// the built-in one.
func (c *Config) SystemPromptOrDefault() string {
	if c.SystemPrompt == "" {
		return prompt.DefaultSystemPrompt
	}
	return c.SystemPrompt
}

// LLMOptions maps the config onto model client options.
func (c *Config) LLMOptions() llm.Options {
	return llm.Options{
		Backend:     c.Backend,
		BaseURL:     c.BaseURL,
		APIKey:      c.APIKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		Stop:        append([]string(nil), c.Stop...),
		Stream:      c.Stream,
		Timeout:     c.RequestTimeout(),
	}
}

// Masked returns a copy safe to print: secrets are replaced.
func (c *Config) Masked() *Config {
	cp := *c
	cp.Stop = append([]string(nil), c.Stop...)
	cp.APIKey = mask(c.APIKey)
	cp.SentryDSN = mask(c.SentryDSN)
	return &cp
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "****"
}

// LoadConfig reads config.json from the config directory, then applies
// config.toml, .env files and the environment on top. A missing config.json is
// created with defaults. Errors are logged and fall back to defaults.
func LoadConfig() *Config {
	configDir, err := GetConfigDir()
	if err != nil {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
		return DefaultConfig()
	}
	return LoadConfigFrom(configDir)
}

// LoadConfigFrom is LoadConfig for an explicit config directory.
func LoadConfigFrom(configDir string) *Config {
	config := loadJSONConfig(configDir)

	tomlResult, tomlErr := LoadTOMLConfigFrom(filepath.Join(configDir, TOMLFileName))
	switch {
	case tomlErr == nil:
		tomlResult.apply(config)
	case !errors.Is(tomlErr, fs.ErrNotExist):
		log.WarningLog.Printf("failed to load TOML config: %v", tomlErr)
	}

	if err := LoadDotEnv(filepath.Join(configDir, ".env"), ".env"); err != nil {
		log.WarningLog.Printf("failed to load .env: %v", err)
	}
	applyEnv(config)
	config.applyBackendDefaults()

	return config
}

// applyBackendDefaults swaps the Llama 3 chat template and its stop token for
// plain turns when the backend is anthropic, which takes its own message
// format rather than raw Llama header tokens.
func (c *Config) applyBackendDefaults() {
	if c.Backend != llm.BackendAnthropic {
		return
	}
	if c.ChatTemplate == "" || c.ChatTemplate == prompt.TemplateLlama3 {
		log.InfoLog.Printf("backend %s: using the %s chat template", c.Backend, prompt.TemplatePlain)
		c.ChatTemplate = prompt.TemplatePlain
	}
	var stop []string
	for _, s := range c.Stop {
		if s != prompt.StopSequence {
			stop = append(stop, s)
		}
	}
	c.Stop = stop
}

func loadJSONConfig(configDir string) *Config {
	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Create and save default config if file doesn't exist
			defaultCfg := DefaultConfig()
			if saveErr := saveConfigTo(configDir, defaultCfg); saveErr != nil {
				log.WarningLog.Printf("failed to save default config: %v", saveErr)
			}
			return defaultCfg
		}

		log.WarningLog.Printf("failed to get config file: %v", err)
		return DefaultConfig()
	}

	// Start from defaults so fields missing from an older file keep sane values.
	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		log.ErrorLog.Printf("failed to parse config file: %v", err)
		return DefaultConfig()
	}
	return config
}

func saveConfigTo(configDir string, config *Config) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(filepath.Join(configDir, ConfigFileName), data, 0644)
}

// SaveConfig writes config to the config directory.
func SaveConfig(config *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	return saveConfigTo(configDir, config)
}

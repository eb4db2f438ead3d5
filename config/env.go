package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/kastheco/arbor/internal/llm"
	"github.com/kastheco/arbor/log"
)

// Environment variables read on top of the config files.
const (
	EnvBackend     = "ARBOR_BACKEND"
	EnvBaseURL     = "ARBOR_BASE_URL"
	EnvModel       = "ARBOR_MODEL"
	EnvAPIKey      = "ARBOR_API_KEY"
	EnvMaxTokens   = "ARBOR_MAX_TOKENS"
	EnvTemperature = "ARBOR_TEMPERATURE"
	EnvStorePath   = "ARBOR_STORE"
	EnvAuditPath   = "ARBOR_AUDIT"
	EnvTelemetry   = "ARBOR_TELEMETRY"
	EnvSentryDSN   = "ARBOR_SENTRY_DSN"

	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
)

// LoadDotEnv loads each existing file into the process environment. Variables
// already set win over the files, and missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return err
		}
	}
	return nil
}

func applyEnv(c *Config) {
	if v, ok := os.LookupEnv(EnvBackend); ok {
		c.Backend = v
	}
	if v, ok := os.LookupEnv(EnvBaseURL); ok {
		c.BaseURL = v
	}
	if v, ok := os.LookupEnv(EnvModel); ok {
		c.Model = v
	}
	if v, ok := os.LookupEnv(EnvStorePath); ok {
		c.StorePath = v
	}
	if v, ok := os.LookupEnv(EnvAuditPath); ok {
		c.AuditPath = v
	}
	if v, ok := os.LookupEnv(EnvSentryDSN); ok {
		c.SentryDSN = v
	}
	if v, ok := os.LookupEnv(EnvMaxTokens); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxTokens = n
		} else {
			log.WarningLog.Printf("ignoring %s=%q: %v", EnvMaxTokens, v, err)
		}
	}
	if v, ok := os.LookupEnv(EnvTemperature); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Temperature = f
		} else {
			log.WarningLog.Printf("ignoring %s=%q: %v", EnvTemperature, v, err)
		}
	}
	if v, ok := os.LookupEnv(EnvTelemetry); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.TelemetryEnabled = &b
		} else {
			log.WarningLog.Printf("ignoring %s=%q: %v", EnvTelemetry, v, err)
		}
	}

	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
		return
	}
	if c.APIKey != "" {
		return
	}
	switch c.Backend {
	case llm.BackendAnthropic:
		c.APIKey = os.Getenv(EnvAnthropicKey)
	case "", llm.BackendOpenAI:
		c.APIKey = os.Getenv(EnvOpenAIKey)
	}
}

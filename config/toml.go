package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/kastheco/arbor/log"
)

// TOMLConfig is the hand-edited overlay read from config.toml. Every field is
// optional; only the ones present override config.json.
type TOMLConfig struct {
	Model   tomlModel   `toml:"model"`
	Planner tomlPlanner `toml:"planner"`
	Storage tomlStorage `toml:"storage"`

	TelemetryEnabled *bool  `toml:"telemetry"`
	SentryDSN        string `toml:"sentry_dsn"`
}

type tomlModel struct {
	Backend        string   `toml:"backend"`
	BaseURL        string   `toml:"base_url"`
	Name           string   `toml:"name"`
	APIKey         string   `toml:"api_key"`
	MaxTokens      *int     `toml:"max_tokens"`
	Temperature    *float64 `toml:"temperature"`
	Stop           []string `toml:"stop"`
	Stream         *bool    `toml:"stream"`
	SystemPrompt   string   `toml:"system_prompt"`
	ChatTemplate   string   `toml:"chat_template"`
	TimeoutSeconds *int     `toml:"timeout_seconds"`
}

type tomlPlanner struct {
	Candidates  *int `toml:"candidates"`
	MaxAttempts *int `toml:"max_attempts"`
	Columns     *int `toml:"columns"`
	ColumnWidth *int `toml:"column_width"`
}

type tomlStorage struct {
	Sessions string `toml:"sessions"`
	Audit    string `toml:"audit"`
	Export   string `toml:"export"`
}

// LoadTOMLConfigFrom decodes the TOML overlay at path. Unknown keys are
// logged and ignored.
func LoadTOMLConfigFrom(path string) (*TOMLConfig, error) {
	var tc TOMLConfig
	md, err := toml.DecodeFile(path, &tc)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		log.WarningLog.Printf("%s: ignoring unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return &tc, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func (tc *TOMLConfig) apply(c *Config) {
	m := tc.Model
	setString(&c.Backend, m.Backend)
	setString(&c.BaseURL, m.BaseURL)
	setString(&c.Model, m.Name)
	setString(&c.APIKey, m.APIKey)
	setString(&c.SystemPrompt, m.SystemPrompt)
	setString(&c.ChatTemplate, m.ChatTemplate)
	setInt(&c.MaxTokens, m.MaxTokens)
	setInt(&c.RequestTimeoutSeconds, m.TimeoutSeconds)
	if m.Temperature != nil {
		c.Temperature = *m.Temperature
	}
	if m.Stop != nil {
		c.Stop = m.Stop
	}
	if m.Stream != nil {
		c.Stream = *m.Stream
	}

	setInt(&c.Candidates, tc.Planner.Candidates)
	setInt(&c.MaxAttempts, tc.Planner.MaxAttempts)
	setInt(&c.Columns, tc.Planner.Columns)
	setInt(&c.ColumnWidth, tc.Planner.ColumnWidth)

	setString(&c.StorePath, tc.Storage.Sessions)
	setString(&c.AuditPath, tc.Storage.Audit)
	setString(&c.ExportPath, tc.Storage.Export)

	if tc.TelemetryEnabled != nil {
		c.TelemetryEnabled = tc.TelemetryEnabled
	}
	setString(&c.SentryDSN, tc.SentryDSN)
}

package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Preset holds the choices made when generating a configuration file
type Preset struct {
	Standard string
	Level    int
	Driver   string
	Paths    []string
}

// DefaultPreset returns the preset matching DefaultConfig
func DefaultPreset() Preset {
	return Preset{
		Standard: DefaultStandard,
		Level:    DefaultAnalysisLevel,
		Driver:   DefaultDriver,
	}
}

// NewConfigFromPreset returns the default configuration with the preset applied
func NewConfigFromPreset(p Preset) *Config {
	cfg := DefaultConfig()
	if p.Standard != "" {
		cfg.Style.Standard = p.Standard
	}
	cfg.Analyze.Level = p.Level
	if p.Driver != "" {
		cfg.TestSuite.Driver = p.Driver
	}
	if len(p.Paths) > 0 {
		cfg.Style.Paths = append([]string{}, p.Paths...)
		cfg.Analyze.Paths = append([]string{}, p.Paths...)
	}
	return cfg
}

// Document converts the configuration into the key layout of the config file.
// Unset optional strings become null so the file stays readable by other
// implementations of the hooks.
func (c *Config) Document() map[string]any {
	return map[string]any{
		"php:cs": map[string]any{
			"config":       nullable(c.Style.Config),
			"standard":     c.Style.Standard,
			"encoding":     c.Style.Encoding,
			"hideWarnings": c.Style.HideWarnings,
			"onlyStaged":   c.Style.OnlyStaged,
			"paths":        nonNil(c.Style.Paths),
			"exclude":      nonNil(c.Style.Exclude),
		},
		"php:lint": map[string]any{
			"binary":  c.Lint.Binary,
			"exclude": nonNil(c.Lint.Exclude),
		},
		"php:analyze": map[string]any{
			"config":       nullable(c.Analyze.Config),
			"memory-limit": nullable(c.Analyze.MemoryLimit),
			"level":        c.Analyze.Level,
			"onlyStaged":   c.Analyze.OnlyStaged,
			"paths":        nonNil(c.Analyze.Paths),
			"exclude":      nonNil(c.Analyze.Exclude),
		},
		"php:test-suite": map[string]any{
			"driver":  c.TestSuite.Driver,
			"config":  nullable(c.TestSuite.Config),
			"printer": nullable(c.TestSuite.Printer),
		},
	}
}

// Marshal renders the configuration as YAML when path ends in .yaml or .yml,
// otherwise as indented JSON
func (c *Config) Marshal(path string) ([]byte, error) {
	doc := c.Document()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to encode YAML config: %w", err)
		}
		return data, nil
	default:
		data, err := json.MarshalIndent(doc, "", "    ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode JSON config: %w", err)
		}
		return append(data, '\n'), nil
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

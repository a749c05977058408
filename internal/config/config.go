package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

// Defaults mirrored from the hook commands
const (
	// DefaultStandard is used when no phpcs configuration file exists and the
	// configured standard is unknown
	DefaultStandard = "PSR-12"

	// DefaultEncoding is passed to phpcs when none is configured
	DefaultEncoding = "utf-8"

	// DefaultAnalysisLevel is the phpstan rule level used without a configuration file
	DefaultAnalysisLevel = 8

	// MaxAnalysisLevel is the highest phpstan rule level accepted
	MaxAnalysisLevel = 8

	// DefaultDriver is the test runner used when none or an unknown one is configured
	DefaultDriver = "phpunit"

	// DefaultLintBinary is the PHP interpreter used for syntax checks
	DefaultLintBinary = "php"
)

// Standard is a phpcs coding standard
type Standard struct {
	// Name is passed to phpcs as --standard
	Name string
	// Display is the name written in config files and messages
	Display string
}

var supportedStandards = []Standard{
	{Name: "PSR1", Display: "PSR-1"},
	{Name: "PSR2", Display: "PSR-2"},
	{Name: "PSR12", Display: "PSR-12"},
	{Name: "Generic", Display: "Generic"},
	{Name: "MySource", Display: "MySource"},
	{Name: "Squiz", Display: "Squiz"},
	{Name: "Zend", Display: "Zend"},
}

// Supported test runner drivers
var supportedDrivers = []string{"phpunit", "pest"}

// Config represents the git-hooks configuration file.
// Each section belongs to one hook command and is named after it.
type Config struct {
	// Style configures php:cs
	Style StyleConfig `json:"php:cs" mapstructure:"php:cs" yaml:"php:cs"`

	// Lint configures php:lint
	Lint LintConfig `json:"php:lint" mapstructure:"php:lint" yaml:"php:lint"`

	// Analyze configures php:analyze
	Analyze AnalyzeConfig `json:"php:analyze" mapstructure:"php:analyze" yaml:"php:analyze"`

	// TestSuite configures php:test-suite
	TestSuite TestSuiteConfig `json:"php:test-suite" mapstructure:"php:test-suite" yaml:"php:test-suite"`

	// Path is the file the configuration was loaded from, empty for defaults
	Path string `json:"-" mapstructure:"-" yaml:"-"`
}

// StyleConfig holds configuration for the code style check
type StyleConfig struct {
	// Config overrides the phpcs configuration file; it is ignored unless it names an .xml file
	Config string `json:"config" mapstructure:"config" yaml:"config"`

	// Standard is the coding standard used without a configuration file
	Standard string `json:"standard" mapstructure:"standard" yaml:"standard"`

	// Encoding of the checked files
	Encoding string `json:"encoding" mapstructure:"encoding" yaml:"encoding"`

	// HideWarnings passes -n so only errors are reported
	HideWarnings bool `json:"hideWarnings" mapstructure:"hideWarnings" yaml:"hideWarnings"`

	// OnlyStaged checks staged files instead of Paths
	OnlyStaged bool `json:"onlyStaged" mapstructure:"onlyStaged" yaml:"onlyStaged"`

	Paths   []string `json:"paths" mapstructure:"paths" yaml:"paths"`
	Exclude []string `json:"exclude" mapstructure:"exclude" yaml:"exclude"`
}

// LintConfig holds configuration for the syntax check
type LintConfig struct {
	// Binary is the PHP interpreter, looked up in PATH unless it contains a separator
	Binary  string   `json:"binary" mapstructure:"binary" yaml:"binary"`
	Exclude []string `json:"exclude" mapstructure:"exclude" yaml:"exclude"`
}

// AnalyzeConfig holds configuration for static analysis
type AnalyzeConfig struct {
	// Config overrides the phpstan configuration file
	Config string `json:"config" mapstructure:"config" yaml:"config"`

	// MemoryLimit is passed as --memory-limit, e.g. "512M" or "-1"
	MemoryLimit string `json:"memory-limit" mapstructure:"memory-limit" yaml:"memory-limit"`

	// Level is the rule level used without a configuration file
	Level int `json:"level" mapstructure:"level" yaml:"level"`

	// OnlyStaged checks staged files under Paths instead of Paths themselves
	OnlyStaged bool `json:"onlyStaged" mapstructure:"onlyStaged" yaml:"onlyStaged"`

	Paths   []string `json:"paths" mapstructure:"paths" yaml:"paths"`
	Exclude []string `json:"exclude" mapstructure:"exclude" yaml:"exclude"`
}

// TestSuiteConfig holds configuration for the test suite run
type TestSuiteConfig struct {
	// Driver is phpunit or pest
	Driver string `json:"driver" mapstructure:"driver" yaml:"driver"`

	// Config overrides the phpunit configuration file
	Config string `json:"config" mapstructure:"config" yaml:"config"`

	// Printer is passed as --printer when set
	Printer string `json:"printer" mapstructure:"printer" yaml:"printer"`
}

// LoadConfig loads configuration from configPath, or discovers it in workDir.
// Without any configuration file the defaults are returned.
func LoadConfig(configPath string, workDir string) (*Config, error) {
	if configPath == "" {
		configPath = os.Getenv("GIT_HOOKS_CONFIG")
	}
	if configPath == "" {
		configPath = FindConfigFile(workDir)
	}
	return loadConfigFromFile(configPath)
}

// loadConfigFromFile validates, reads and parses a configuration file
func loadConfigFromFile(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	if err := ValidateFile(configPath); err != nil {
		return nil, err
	}

	// Create a new viper instance to avoid race conditions
	v := viper.New()
	config := DefaultConfig()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	config.Path = configPath
	return config, nil
}

// ConfigFileCandidates lists the configuration file names in order of preference
var ConfigFileCandidates = []string{
	"git-hooks.config.json",
	"git-hooks.config.yaml",
	"git-hooks.config.yml",
}

// FindConfigFile returns the first configuration file found in dir
func FindConfigFile(dir string) string {
	if dir == "" {
		dir = "."
	}
	return searchConfigInDirectory(dir, ConfigFileCandidates)
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.Analyze.Level < 0 || c.Analyze.Level > MaxAnalysisLevel {
		return fmt.Errorf("php:analyze.level must be between 0 and %d, got %d", MaxAnalysisLevel, c.Analyze.Level)
	}

	if err := validateMemoryLimit(c.Analyze.MemoryLimit); err != nil {
		return err
	}

	return nil
}

// validateMemoryLimit accepts "", "-1" or any size humanize can parse
func validateMemoryLimit(limit string) error {
	if limit == "" || limit == "-1" {
		return nil
	}
	if _, err := humanize.ParseBytes(limit); err != nil {
		return fmt.Errorf("php:analyze.memory-limit %q is not a valid size: %w", limit, err)
	}
	return nil
}

// ResolvedStandard returns the configured standard when phpcs supports it,
// otherwise PSR-12. Both "PSR-12" and "PSR12" spellings are accepted.
func (c *StyleConfig) ResolvedStandard() Standard {
	for _, std := range supportedStandards {
		if c.Standard == std.Display || c.Standard == std.Name {
			return std
		}
	}
	return supportedStandards[2]
}

// ResolvedEncoding returns the configured encoding or DefaultEncoding
func (c *StyleConfig) ResolvedEncoding() string {
	if c.Encoding == "" {
		return DefaultEncoding
	}
	return c.Encoding
}

// ResolvedBinary returns the configured PHP binary or DefaultLintBinary
func (c *LintConfig) ResolvedBinary() string {
	if c.Binary == "" {
		return DefaultLintBinary
	}
	return c.Binary
}

// ResolvedDriver returns the configured driver when supported, otherwise DefaultDriver
func (c *TestSuiteConfig) ResolvedDriver() string {
	if slices.Contains(supportedDrivers, c.Driver) {
		return c.Driver
	}
	return DefaultDriver
}

// SupportedStandards lists the standards accepted by php:cs
func SupportedStandards() []Standard {
	return slices.Clone(supportedStandards)
}

// SupportedDrivers lists the accepted test runner drivers
func SupportedDrivers() []string {
	return slices.Clone(supportedDrivers)
}

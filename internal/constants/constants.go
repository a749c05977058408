package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "phphooks"

	// ConfigFileName is the default config file name
	ConfigFileName = "git-hooks.config.json"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "GIT_HOOKS"
)

// Hook command names
const (
	HookStyle     = "php:cs"
	HookLint      = "php:lint"
	HookAnalyze   = "php:analyze"
	HookTestSuite = "php:test-suite"
)

// Output format constants
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Files inspected by the hooks
const (
	PHPExtension = "php"

	// VendorBinDir holds the composer-installed tool executables
	VendorBinDir = "vendor/bin"
)

package domain

import (
	"context"
	"time"
)

// ExecutionMode decides how a tool's output reaches the user
type ExecutionMode int

const (
	// ExecutionModeBlocking captures stdout and stderr and returns them after exit
	ExecutionModeBlocking ExecutionMode = iota
	// ExecutionModeStreaming forwards output as it arrives while still waiting for exit
	ExecutionModeStreaming
)

// String returns the mode name used in logs
func (m ExecutionMode) String() string {
	if m == ExecutionModeStreaming {
		return "streaming"
	}
	return "blocking"
}

// ToolInvocation describes one external process run
type ToolInvocation struct {
	// Tool is the human-readable tool name used in error messages
	Tool       string
	Executable string
	Args       []string
	WorkDir    string
	Mode       ExecutionMode
	// Timeout bounds the run; zero means no limit
	Timeout time.Duration
}

// InvocationResult holds what a finished process produced
type InvocationResult struct {
	ExitSuccess bool
	ExitCode    int
	Stdout      []byte
	Stderr      []byte
	Duration    time.Duration
}

// ToolOutputKind tags the format of a tool's output so it can be decoded
// by the matching parser
type ToolOutputKind int

const (
	// ToolOutputStyleJSON is the phpcs --report=json payload
	ToolOutputStyleJSON ToolOutputKind = iota
	// ToolOutputAnalysisJSON is the phpstan --error-format=json payload
	ToolOutputAnalysisJSON
	// ToolOutputLintText is the plain text of php -l for one file
	ToolOutputLintText
	// ToolOutputTestRunnerStatus carries only the exit status of a test run
	ToolOutputTestRunnerStatus
)

// String returns the kind name used in logs
func (k ToolOutputKind) String() string {
	switch k {
	case ToolOutputStyleJSON:
		return "style-json"
	case ToolOutputAnalysisJSON:
		return "analysis-json"
	case ToolOutputLintText:
		return "lint-text"
	case ToolOutputTestRunnerStatus:
		return "test-runner-status"
	default:
		return "unknown"
	}
}

// RawOutput is what the parser receives from an invocation
type RawOutput struct {
	Stdout      []byte
	ExitSuccess bool
	// Subject is the file a per-file tool ran against
	Subject string
}

// VersionControl answers the two questions the hooks ask of git
type VersionControl interface {
	// ListStagedFiles lists staged files with the given extension
	ListStagedFiles(ctx context.Context, extension string, filters ...string) ([]string, error)
	// ListUnstagedFiles lists files with working-tree changes not yet staged
	ListUnstagedFiles(ctx context.Context, extension string, filters ...string) ([]string, error)
}

// FileSetResolver determines which files a hook checks
type FileSetResolver interface {
	Resolve(ctx context.Context, req CheckRequest) (*FileSet, error)
}

// ToolInvoker runs external tools
type ToolInvoker interface {
	Invoke(ctx context.Context, inv ToolInvocation) (*InvocationResult, error)
	// Locate verifies that an executable exists and may be run, returning
	// the path to invoke. Bare names are looked up in PATH.
	Locate(tool, path string) (string, error)
}

// ResultParser translates raw tool output into a CheckResult
type ResultParser interface {
	Parse(kind ToolOutputKind, out RawOutput) *CheckResult
}

package domain

// OutputFormat represents the supported report formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// Remediation is a command that fixes some findings automatically.
// Fixable files are appended to Command when the hint is rendered.
type Remediation struct {
	Command []string
}

// RenderOptions carries the per-command wording of a report
type RenderOptions struct {
	Kind ToolOutputKind
	// FailureHeadline is printed after the diagnostics tables
	FailureHeadline string
	// DecodeFailure explains an unparsable payload
	DecodeFailure string
	// Remediation is offered when at least one file is fixable
	Remediation *Remediation
}

// ReportRenderer turns results and progress messages into user-facing text
type ReportRenderer interface {
	// Render produces the final report for a parsed result
	Render(result *CheckResult, opts RenderOptions) Report
	// Section renders the heading printed when a hook starts
	Section(title string) string
	// Info renders an informational line
	Info(message string) string
	// Success renders a success block
	Success(message string) string
	// Failure renders an error block with optional detail lines
	Failure(message string, details ...string) string
	// Hint renders a line telling the user what to do next
	Hint(message string) string
	// Listing renders a heading followed by one item per line
	Listing(heading string, items []string) string
	// Summary renders the machine-readable outcome of a whole hook run
	Summary(hook string, outcome HookOutcome) (string, error)
}

// ProgressManager manages progress reporting for long-running loops
type ProgressManager interface {
	StartTask(description string, total int) TaskProgress
	IsInteractive() bool
	Close()
}

// TaskProgress tracks a single task
type TaskProgress interface {
	Increment(n int)
	Describe(description string)
	Complete()
}

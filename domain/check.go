package domain

import (
	"encoding/json"
	"slices"
)

// CheckMode selects where the files to check come from
type CheckMode int

const (
	// CheckModeStagedOnly checks the files staged in the index
	CheckModeStagedOnly CheckMode = iota
	// CheckModeExplicitPaths checks the configured path list
	CheckModeExplicitPaths
)

// String returns the mode name used in logs
func (m CheckMode) String() string {
	switch m {
	case CheckModeStagedOnly:
		return "staged"
	case CheckModeExplicitPaths:
		return "paths"
	default:
		return "unknown"
	}
}

// CheckRequest is the immutable input of a single hook invocation
type CheckRequest struct {
	Mode           CheckMode
	ExplicitPaths  []string
	ConfigOverride string
	// Extension limits staged files, without the leading dot
	Extension string
	// Exclude holds gitignore-style patterns removed from every file set
	Exclude []string
	// Prefixes restricts staged files to those under one of these paths when
	// Restricted is set. A restricted request with no prefixes keeps nothing.
	Prefixes    []string
	Restricted  bool
	ToolOptions map[string]string
}

// NewCheckRequest builds a request, copying every slice and map so the caller
// cannot mutate it afterwards
func NewCheckRequest(mode CheckMode, paths []string, override, extension string, exclude []string, options map[string]string) CheckRequest {
	opts := make(map[string]string, len(options))
	for k, v := range options {
		opts[k] = v
	}
	return CheckRequest{
		Mode:           mode,
		ExplicitPaths:  slices.Clone(paths),
		ConfigOverride: override,
		Extension:      extension,
		Exclude:        slices.Clone(exclude),
		ToolOptions:    opts,
	}
}

// WithPrefixes returns a copy of the request restricted to staged files under prefixes
func (r CheckRequest) WithPrefixes(prefixes []string) CheckRequest {
	r.Prefixes = slices.Clone(prefixes)
	r.Restricted = true
	return r
}

// Option returns a tool option or "" when unset
func (r CheckRequest) Option(key string) string {
	return r.ToolOptions[key]
}

// FileSet is the resolved set of files a hook works on.
// All lists keep the order in which git reported them.
type FileSet struct {
	Staged      []string `json:"staged,omitempty"`
	Unstaged    []string `json:"unstaged,omitempty"`
	Conflicting []string `json:"conflicting,omitempty"`
	// Paths is what the tool receives
	Paths []string `json:"paths"`
}

// NewStagedFileSet builds a file set from staged and unstaged lists and
// computes the conflicting intersection in staged order
func NewStagedFileSet(staged, unstaged []string) *FileSet {
	dirty := make(map[string]struct{}, len(unstaged))
	for _, f := range unstaged {
		dirty[f] = struct{}{}
	}

	var conflicting []string
	for _, f := range staged {
		if _, ok := dirty[f]; ok {
			conflicting = append(conflicting, f)
		}
	}

	return &FileSet{
		Staged:      slices.Clone(staged),
		Unstaged:    slices.Clone(unstaged),
		Conflicting: conflicting,
		Paths:       slices.Clone(staged),
	}
}

// NewExplicitFileSet builds a file set from an already filtered path list
func NewExplicitFileSet(paths []string) *FileSet {
	return &FileSet{Paths: slices.Clone(paths)}
}

// HasConflicts reports whether any staged file also has unstaged changes
func (fs *FileSet) HasConflicts() bool {
	return len(fs.Conflicting) > 0
}

// IsEmpty reports whether there is nothing to check
func (fs *FileSet) IsEmpty() bool {
	return len(fs.Paths) == 0
}

// Severity classifies a diagnostic
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Label returns the upper-case label shown in reports
func (s Severity) Label() string {
	if s == SeverityWarning {
		return "WARNING"
	}
	return "ERROR"
}

// Diagnostic is a single finding reported by a tool.
// Line and Column are zero when the tool did not report them.
type Diagnostic struct {
	File     string   `json:"file"`
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Fixable  bool     `json:"fixable"`
}

// FileDiagnostics groups the diagnostics of one file in emission order
type FileDiagnostics struct {
	Path        string       `json:"path"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// CheckResult is the canonical outcome of parsing tool output.
// Totals are derived from the per-file lists and can not be set directly.
type CheckResult struct {
	files        []FileDiagnostics
	index        map[string]int
	fixableFiles []string
	fixableSeen  map[string]struct{}

	// Notices holds messages not tied to a file
	Notices           []string
	ToolExitedCleanly bool
	UnparsableOutput  bool
}

// NewCheckResult creates an empty result
func NewCheckResult(exitedCleanly bool) *CheckResult {
	return &CheckResult{
		index:             make(map[string]int),
		fixableSeen:       make(map[string]struct{}),
		ToolExitedCleanly: exitedCleanly,
	}
}

// NewUnparsableResult creates a result for output that could not be decoded
func NewUnparsableResult() *CheckResult {
	r := NewCheckResult(false)
	r.UnparsableOutput = true
	return r
}

// Add appends a diagnostic to its file, creating the file entry on first sight
func (r *CheckResult) Add(d Diagnostic) {
	if r.index == nil {
		r.index = make(map[string]int)
		r.fixableSeen = make(map[string]struct{})
	}
	i, ok := r.index[d.File]
	if !ok {
		i = len(r.files)
		r.index[d.File] = i
		r.files = append(r.files, FileDiagnostics{Path: d.File})
	}
	r.files[i].Diagnostics = append(r.files[i].Diagnostics, d)

	if d.Fixable {
		if _, seen := r.fixableSeen[d.File]; !seen {
			r.fixableSeen[d.File] = struct{}{}
			r.fixableFiles = append(r.fixableFiles, d.File)
		}
	}
}

// Merge appends every diagnostic and notice of other, preserving order
func (r *CheckResult) Merge(other *CheckResult) {
	if other == nil {
		return
	}
	for _, f := range other.files {
		for _, d := range f.Diagnostics {
			r.Add(d)
		}
	}
	r.Notices = append(r.Notices, other.Notices...)
	r.ToolExitedCleanly = r.ToolExitedCleanly && other.ToolExitedCleanly
	r.UnparsableOutput = r.UnparsableOutput || other.UnparsableOutput
}

// Files returns the per-file diagnostics in the order files were first seen
func (r *CheckResult) Files() []FileDiagnostics {
	return slices.Clone(r.files)
}

// FixableFiles returns files with at least one fixable diagnostic, in first-seen order
func (r *CheckResult) FixableFiles() []string {
	return slices.Clone(r.fixableFiles)
}

// TotalErrors counts error diagnostics
func (r *CheckResult) TotalErrors() int {
	return r.count(SeverityError)
}

// TotalWarnings counts warning diagnostics
func (r *CheckResult) TotalWarnings() int {
	return r.count(SeverityWarning)
}

// TotalDiagnostics counts all diagnostics
func (r *CheckResult) TotalDiagnostics() int {
	n := 0
	for _, f := range r.files {
		n += len(f.Diagnostics)
	}
	return n
}

func (r *CheckResult) count(s Severity) int {
	n := 0
	for _, f := range r.files {
		for _, d := range f.Diagnostics {
			if d.Severity == s {
				n++
			}
		}
	}
	return n
}

// Status derives the exit status of the result
func (r *CheckResult) Status() ExitStatus {
	if r.UnparsableOutput {
		return ExitStatusFailure
	}
	if r.TotalDiagnostics() == 0 && r.ToolExitedCleanly {
		return ExitStatusSuccess
	}
	return ExitStatusFailure
}

// MarshalJSON encodes the result with its derived totals
func (r *CheckResult) MarshalJSON() ([]byte, error) {
	files := r.files
	if files == nil {
		files = []FileDiagnostics{}
	}
	return json.Marshal(struct {
		Files             []FileDiagnostics `json:"files"`
		FixableFiles      []string          `json:"fixable_files,omitempty"`
		Notices           []string          `json:"notices,omitempty"`
		TotalErrors       int               `json:"total_errors"`
		TotalWarnings     int               `json:"total_warnings"`
		ToolExitedCleanly bool              `json:"tool_exited_cleanly"`
		UnparsableOutput  bool              `json:"unparsable_output"`
	}{
		Files:             files,
		FixableFiles:      r.fixableFiles,
		Notices:           r.Notices,
		TotalErrors:       r.TotalErrors(),
		TotalWarnings:     r.TotalWarnings(),
		ToolExitedCleanly: r.ToolExitedCleanly,
		UnparsableOutput:  r.UnparsableOutput,
	})
}

// ExitStatus is the binary verdict returned to git
type ExitStatus int

const (
	ExitStatusSuccess ExitStatus = iota
	ExitStatusFailure
)

// String returns "success" or "failure"
func (s ExitStatus) String() string {
	if s == ExitStatusSuccess {
		return "success"
	}
	return "failure"
}

// ExitCode maps the status to a process exit code
func (s ExitStatus) ExitCode() int {
	if s == ExitStatusSuccess {
		return 0
	}
	return 1
}

// Report is rendered output plus the status it stands for
type Report struct {
	Text   string
	Status ExitStatus
}

// HookOutcome is the final verdict of a hook command.
// Err holds the DomainError behind a failure and is nil on success.
// Result is set once tool output has been parsed.
type HookOutcome struct {
	Status ExitStatus
	Err    error
	Result *CheckResult
}

// Succeeded creates a successful outcome
func Succeeded() HookOutcome {
	return HookOutcome{Status: ExitStatusSuccess}
}

// Failed creates a failed outcome carrying err
func Failed(err error) HookOutcome {
	return HookOutcome{Status: ExitStatusFailure, Err: err}
}

// WithResult attaches a parsed result to the outcome
func (o HookOutcome) WithResult(r *CheckResult) HookOutcome {
	o.Result = r
	return o
}

package service

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rugaard/git-hooks-php/domain"
)

// Closing line of every failed report
const retryHint = "Fix the error(s) and try again."

// ReportRendererImpl implements domain.ReportRenderer
type ReportRendererImpl struct {
	workDir string
	format  domain.OutputFormat

	title   *color.Color
	info    *color.Color
	success *color.Color
	failure *color.Color
	warning *color.Color
	hint    *color.Color
	file    *color.Color
}

// NewReportRenderer creates a renderer; paths under workDir are shown relative to it
func NewReportRenderer(workDir string, format domain.OutputFormat, noColor bool) *ReportRendererImpl {
	r := &ReportRendererImpl{
		workDir: workDir,
		format:  format,
		title:   color.New(color.FgYellow, color.Bold),
		info:    color.New(color.FgCyan),
		success: color.New(color.FgGreen, color.Bold),
		failure: color.New(color.FgRed, color.Bold),
		warning: color.New(color.FgYellow),
		hint:    color.New(color.FgWhite),
		file:    color.New(color.FgCyan, color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{r.title, r.info, r.success, r.failure, r.warning, r.hint, r.file} {
			c.DisableColor()
		}
	}
	return r
}

func (r *ReportRendererImpl) quiet() bool {
	return r.format == domain.OutputFormatJSON
}

// Render produces the final report for a parsed result
func (r *ReportRendererImpl) Render(result *domain.CheckResult, opts domain.RenderOptions) domain.Report {
	if result == nil {
		result = domain.NewUnparsableResult()
	}
	status := result.Status()
	if r.quiet() {
		return domain.Report{Status: status}
	}

	if result.UnparsableOutput {
		return domain.Report{Text: r.Failure("Errors found", opts.DecodeFailure), Status: status}
	}
	if status == domain.ExitStatusSuccess {
		return domain.Report{Text: r.Success("Done"), Status: status}
	}

	var b strings.Builder
	for _, f := range result.Files() {
		b.WriteString(r.file.Sprint(r.relative(f.Path)))
		b.WriteString("\n")
		b.WriteString(r.table(f.Diagnostics))
		b.WriteString("\n\n")
	}
	if len(result.Notices) > 0 {
		b.WriteString(r.Listing("Errors not tied to a file:", result.Notices))
	}

	headline := opts.FailureHeadline
	if headline == "" {
		headline = "Errors found"
	}
	b.WriteString(r.Failure(headline))

	if fixable := result.FixableFiles(); opts.Remediation != nil && len(fixable) > 0 {
		command := append([]string{}, opts.Remediation.Command...)
		for _, f := range fixable {
			command = append(command, r.relative(f))
		}
		b.WriteString(r.hint.Sprint("Tip: Some errors can be fixed automatically by using following command:"))
		b.WriteString("\n\n")
		b.WriteString(r.hint.Sprint("  " + strings.Join(command, " ")))
		b.WriteString("\n\n")
	}

	b.WriteString(r.Hint(retryHint))
	return domain.Report{Text: b.String(), Status: status}
}

func (r *ReportRendererImpl) table(diagnostics []domain.Diagnostic) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.Style().Options.SeparateRows = true
	tw.AppendHeader(table.Row{"Type", "Line", "Fix", "Message"})

	for _, d := range diagnostics {
		label := d.Severity.Label()
		if d.Severity == domain.SeverityWarning {
			label = r.warning.Sprint(label)
		} else {
			label = r.failure.Sprint(label)
		}
		fix := "[ ]"
		if d.Fixable {
			fix = "[x]"
		}
		tw.AppendRow(table.Row{label, position(d), fix, d.Message})
	}
	return tw.Render()
}

// position formats line and column, leaving out what the tool did not report
func position(d domain.Diagnostic) string {
	switch {
	case d.Line > 0 && d.Column > 0:
		return fmt.Sprintf("%d:%d", d.Line, d.Column)
	case d.Line > 0:
		return strconv.Itoa(d.Line)
	default:
		return ""
	}
}

func (r *ReportRendererImpl) relative(path string) string {
	if r.workDir == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(r.workDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// Section renders the heading printed when a hook starts
func (r *ReportRendererImpl) Section(title string) string {
	if r.quiet() {
		return ""
	}
	return "\n" + r.title.Sprint(title) + "\n" + r.title.Sprint(strings.Repeat("=", len(title))) + "\n\n"
}

// Info renders an informational line
func (r *ReportRendererImpl) Info(message string) string {
	if r.quiet() {
		return ""
	}
	return r.info.Sprint("[INFO] "+message) + "\n\n"
}

// Success renders a success block
func (r *ReportRendererImpl) Success(message string) string {
	if r.quiet() {
		return ""
	}
	return r.success.Sprint(" [OK] "+message) + "\n\n"
}

// Failure renders an error block followed by detail lines
func (r *ReportRendererImpl) Failure(message string, details ...string) string {
	if r.quiet() {
		return ""
	}
	var b strings.Builder
	b.WriteString(r.failure.Sprint(" [ERROR] " + message))
	b.WriteString("\n\n")
	for _, d := range details {
		if d == "" {
			continue
		}
		b.WriteString(r.warning.Sprint(d))
		b.WriteString("\n")
	}
	return b.String()
}

// Hint renders a line telling the user what to do next
func (r *ReportRendererImpl) Hint(message string) string {
	if r.quiet() {
		return ""
	}
	return r.warning.Sprint(message) + "\n"
}

// Listing renders a heading followed by one item per line
func (r *ReportRendererImpl) Listing(heading string, items []string) string {
	if r.quiet() {
		return ""
	}
	var b strings.Builder
	if heading != "" {
		b.WriteString(heading)
		b.WriteString("\n")
	}
	for _, item := range items {
		b.WriteString(" * ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// Summary renders the JSON document describing a finished hook run
func (r *ReportRendererImpl) Summary(hook string, outcome domain.HookOutcome) (string, error) {
	payload := struct {
		Hook      string              `json:"hook"`
		Status    string              `json:"status"`
		ErrorCode string              `json:"error_code,omitempty"`
		Error     string              `json:"error,omitempty"`
		Result    *domain.CheckResult `json:"result,omitempty"`
	}{
		Hook:      hook,
		Status:    outcome.Status.String(),
		ErrorCode: domain.ErrorCode(outcome.Err),
		Result:    outcome.Result,
	}
	if outcome.Err != nil {
		payload.Error = outcome.Err.Error()
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", domain.NewOutputError("failed to encode JSON summary", err)
	}
	return string(data) + "\n", nil
}
